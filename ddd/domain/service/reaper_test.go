package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// sweepRepo marks stale rows in memory, mirroring the bulk UPDATE the real
// repository issues.
type sweepRepo struct {
	jobs map[uint64]*entity.VideoJob
}

func (r *sweepRepo) Create(ctx context.Context, job *entity.VideoJob) error { return nil }
func (r *sweepRepo) Get(ctx context.Context, id uint64) (*entity.VideoJob, error) {
	return r.jobs[id], nil
}
func (r *sweepRepo) Update(ctx context.Context, job *entity.VideoJob) error { return nil }
func (r *sweepRepo) UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error {
	return nil
}
func (r *sweepRepo) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	return nil
}
func (r *sweepRepo) CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	return 0, nil
}
func (r *sweepRepo) CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error) {
	return 0, nil
}
func (r *sweepRepo) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	var reaped int64
	for _, job := range r.jobs {
		if job.Status == vo.JobStatusProcessing && job.UpdatedAt.Before(cutoff) {
			job.Status = vo.JobStatusError
			reaped++
		}
	}
	return reaped, nil
}

func TestStaleJobReaperSweepsOldProcessingJobs(t *testing.T) {
	stale := &entity.VideoJob{ID: 1, Status: vo.JobStatusProcessing, UpdatedAt: time.Now().Add(-30 * time.Minute)}
	fresh := &entity.VideoJob{ID: 2, Status: vo.JobStatusProcessing, UpdatedAt: time.Now().Add(-time.Second)}
	finished := &entity.VideoJob{ID: 3, Status: vo.JobStatusFinished, UpdatedAt: time.Now().Add(-30 * time.Minute)}
	repo := &sweepRepo{jobs: map[uint64]*entity.VideoJob{1: stale, 2: fresh, 3: finished}}

	reaper := NewStaleJobReaper(repo, 15*time.Minute)
	reaped, err := reaper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), reaped)
	assert.Equal(t, vo.JobStatusError, stale.Status)
	assert.Equal(t, vo.JobStatusProcessing, fresh.Status)
	assert.Equal(t, vo.JobStatusFinished, finished.Status)
}

func TestStaleJobReaperDefaultThreshold(t *testing.T) {
	reaper := NewStaleJobReaper(&sweepRepo{jobs: map[uint64]*entity.VideoJob{}}, 0)
	assert.Equal(t, 15*time.Minute, reaper.threshold)
}
