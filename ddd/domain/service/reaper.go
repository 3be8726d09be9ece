package service

import (
	"context"
	"time"

	"videogen-service/ddd/domain/repo"
	"videogen-service/pkg/logger"
)

// StaleJobReaper transitions jobs stuck in processing past the heartbeat
// threshold into the error status. A crashed worker or dead backend process
// otherwise leaves its job occupying the concurrency cap forever.
type StaleJobReaper struct {
	repo      repo.VideoJobRepository
	threshold time.Duration
}

// NewStaleJobReaper creates a reaper with the given heartbeat threshold.
func NewStaleJobReaper(r repo.VideoJobRepository, threshold time.Duration) *StaleJobReaper {
	if threshold <= 0 {
		threshold = 15 * time.Minute
	}
	return &StaleJobReaper{repo: r, threshold: threshold}
}

// Sweep bulk-errors every processing job whose last update is older than the
// threshold. Runs at the start of each worker pickup cycle.
func (s *StaleJobReaper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.threshold)
	reaped, err := s.repo.MarkStaleProcessing(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if reaped > 0 {
		logger.Warnf("Reaped stale processing jobs count=%d threshold=%s", reaped, s.threshold)
	}
	return reaped, nil
}
