package progress

import (
	"context"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/pkg/logger"
)

// DBSink persists driver progress samples straight to the job row, which is
// where the status endpoint reads them from.
type DBSink struct {
	jobRepo repo.VideoJobRepository
}

func NewDBSink(jobRepo repo.VideoJobRepository) port.ProgressSink {
	return &DBSink{jobRepo: jobRepo}
}

func (s *DBSink) SaveProgress(ctx context.Context, job *entity.VideoJob, progress int, estimatedTimeLeft, jobTime int64) error {
	job.UpdateProgress(jobTime, progress, estimatedTimeLeft)
	if err := s.jobRepo.UpdateProgress(ctx, job.ID, job.Progress, job.EstimatedTimeLeft, job.JobTime); err != nil {
		logger.Warnf("persist progress failed job_id=%d err=%v", job.ID, err)
		return err
	}
	return nil
}
