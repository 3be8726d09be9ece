package gate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"videogen-service/ddd/domain/port"
)

// redisLockStore implements the per-job lock on a shared redis so the gate
// stays correct when several worker processes pull from the same lanes.
type redisLockStore struct {
	client *redis.Client
}

func NewRedisLockStore(client *redis.Client) port.LockStore {
	return &redisLockStore{client: client}
}

func (s *redisLockStore) Put(ctx context.Context, key string, ttlSeconds int) (bool, error) {
	return s.client.SetNX(ctx, key, "1", time.Duration(ttlSeconds)*time.Second).Result()
}

func (s *redisLockStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisLockStore) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
