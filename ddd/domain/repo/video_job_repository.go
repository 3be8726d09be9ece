package repo

import (
	"context"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// VideoJobRepository persists job records. The pipeline coordinates entirely
// through these rows plus the execution lock, so counting and the stale sweep
// must run against the store, never an in-memory mirror.
type VideoJobRepository interface {
	Create(ctx context.Context, job *entity.VideoJob) error
	Get(ctx context.Context, id uint64) (*entity.VideoJob, error)
	Update(ctx context.Context, job *entity.VideoJob) error

	// UpdateStatus persists only the status column.
	UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error

	// UpdateProgress persists progress, ETA and elapsed time in one write.
	UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error

	// CountByStatus counts jobs in the given status across the whole system.
	CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error)

	// CountByStatusAndGenerator counts jobs in the given status for one backend.
	CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error)

	// MarkStaleProcessing bulk-transitions processing jobs whose last update
	// is older than cutoff into the error status, returning the row count.
	MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error)
}
