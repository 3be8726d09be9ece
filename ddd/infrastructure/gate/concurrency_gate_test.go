package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/vo"
)

type countingRepo struct {
	processing int64
	deforum    int64
}

func (r *countingRepo) Create(ctx context.Context, job *entity.VideoJob) error { return nil }
func (r *countingRepo) Get(ctx context.Context, id uint64) (*entity.VideoJob, error) {
	return nil, nil
}
func (r *countingRepo) Update(ctx context.Context, job *entity.VideoJob) error { return nil }
func (r *countingRepo) UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error {
	return nil
}
func (r *countingRepo) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	return nil
}
func (r *countingRepo) CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	return r.processing, nil
}
func (r *countingRepo) CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error) {
	return r.deforum, nil
}
func (r *countingRepo) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type memoryLockStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{keys: map[string]bool{}}
}

func (s *memoryLockStore) Put(ctx context.Context, key string, ttlSeconds int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryLockStore) Has(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryLockStore) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func TestGateGrantsBelowCap(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{processing: 0}, newMemoryLockStore(), 1, 1800)

	admission, err := gate.TryAcquire(context.Background(), 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateSaturatedAtCap(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{processing: 1}, newMemoryLockStore(), 1, 1800)

	admission, err := gate.TryAcquire(context.Background(), 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionSaturated, admission)
}

func TestGateDisabledCapGrants(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{processing: 5}, newMemoryLockStore(), -1, 1800)

	admission, err := gate.TryAcquire(context.Background(), 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateDisabledCapStillLocksPerJob(t *testing.T) {
	locks := newMemoryLockStore()
	gate := NewConcurrencyGate(&countingRepo{processing: 5}, locks, -1, 1800)
	ctx := context.Background()

	admission, err := gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	require.Equal(t, port.AdmissionGranted, admission)

	admission, err = gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionDuplicate, admission)
}

func TestGateDeforumSingleFlight(t *testing.T) {
	repo := &countingRepo{processing: 1, deforum: 1}
	gate := NewConcurrencyGate(repo, newMemoryLockStore(), 4, 1800)
	ctx := context.Background()

	admission, err := gate.TryAcquire(ctx, 1, vo.GeneratorDeforum, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionSaturated, admission)

	// The running animation batch does not block a vid2vid attempt.
	admission, err = gate.TryAcquire(ctx, 2, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateDeforumGrantedWhenBackendIdle(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{processing: 1, deforum: 0}, newMemoryLockStore(), 4, 1800)

	admission, err := gate.TryAcquire(context.Background(), 1, vo.GeneratorDeforum, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGatePreviewBypassesCap(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{processing: 5}, newMemoryLockStore(), 1, 1800)

	admission, err := gate.TryAcquire(context.Background(), 1, vo.GeneratorVid2Vid, true)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateDuplicateLock(t *testing.T) {
	locks := newMemoryLockStore()
	gate := NewConcurrencyGate(&countingRepo{}, locks, 2, 1800)
	ctx := context.Background()

	admission, err := gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	require.Equal(t, port.AdmissionGranted, admission)

	admission, err = gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionDuplicate, admission)

	// A different job is unaffected by job 1's lock.
	admission, err = gate.TryAcquire(ctx, 2, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateReleaseFreesLock(t *testing.T) {
	locks := newMemoryLockStore()
	gate := NewConcurrencyGate(&countingRepo{}, locks, 1, 1800)
	ctx := context.Background()

	admission, err := gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	require.Equal(t, port.AdmissionGranted, admission)

	gate.Release(ctx, 1)

	admission, err = gate.TryAcquire(ctx, 1, vo.GeneratorVid2Vid, false)
	require.NoError(t, err)
	assert.Equal(t, port.AdmissionGranted, admission)
}

func TestGateReleaseIdempotent(t *testing.T) {
	gate := NewConcurrencyGate(&countingRepo{}, newMemoryLockStore(), 1, 1800)
	ctx := context.Background()

	gate.Release(ctx, 1)
	gate.Release(ctx, 1)
}
