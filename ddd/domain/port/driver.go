package port

import (
	"context"
	"fmt"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// Attempt is one queued execution of a job. The same job may be attempted
// many times; the unique id deduplicates identical submissions while one is
// already queued.
type Attempt struct {
	JobID           uint64
	Generator       vo.GeneratorKind
	PreviewFrames   int
	ExtendFromJobID uint64
	Attempts        int
	FirstQueuedAt   time.Time
}

// IsPreview reports whether this attempt renders a preview instead of the
// full result. Preview attempts bypass the concurrency cap.
func (a Attempt) IsPreview() bool {
	return a.PreviewFrames > 0
}

// UniqueID is the dedup key for identical queued submissions.
func (a Attempt) UniqueID() string {
	if a.ExtendFromJobID != 0 {
		return fmt.Sprintf("%d-%d-%d", a.JobID, a.PreviewFrames, a.ExtendFromJobID)
	}
	return fmt.Sprintf("%d-%d-base", a.JobID, a.PreviewFrames)
}

// Driver owns the interaction with one external generation backend for
// exactly one job attempt. Implementations share the state machine and
// estimator; they differ only in how the backend is launched and observed.
//
// Start returns an Outcome for every control-flow result (including
// requeue and cancellation) and an error only for genuine failures the
// queue retry policy should count.
type Driver interface {
	Kind() vo.GeneratorKind
	Start(ctx context.Context, job *entity.VideoJob, attempt Attempt) (vo.Outcome, error)
}
