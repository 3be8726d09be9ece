package port

import (
	"context"

	"videogen-service/ddd/domain/entity"
)

// ProgressSink persists progress updates emitted while a driver runs.
type ProgressSink interface {
	SaveProgress(ctx context.Context, job *entity.VideoJob, progress int, estimatedTimeLeft, jobTime int64) error
}
