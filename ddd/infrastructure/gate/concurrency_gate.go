package gate

import (
	"context"
	"fmt"

	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/logger"
)

// ConcurrencyGate admits attempts against the global processing cap and takes
// the per-job execution lock. The count runs against the job table, the lock
// against redis, so several worker processes sharing the database and redis
// observe the same gate.
type ConcurrencyGate struct {
	jobRepo        repo.VideoJobRepository
	locks          port.LockStore
	maxConcurrent  int64
	lockTTLSeconds int
}

// NewConcurrencyGate builds the gate. A non-positive maxConcurrent disables
// the global cap; the per-job lock and the deforum single-flight check still
// apply.
func NewConcurrencyGate(jobRepo repo.VideoJobRepository, locks port.LockStore, maxConcurrent int64, lockTTLSeconds int) *ConcurrencyGate {
	if lockTTLSeconds <= 0 {
		lockTTLSeconds = 30 * 60
	}
	return &ConcurrencyGate{
		jobRepo:        jobRepo,
		locks:          locks,
		maxConcurrent:  maxConcurrent,
		lockTTLSeconds: lockTTLSeconds,
	}
}

func lockKey(jobID uint64) string {
	return fmt.Sprintf("videojob:processing:%d", jobID)
}

// TryAcquire admits one attempt. Preview attempts bypass the cap because a
// preview render is short and the user is actively waiting on it.
func (g *ConcurrencyGate) TryAcquire(ctx context.Context, jobID uint64, kind vo.GeneratorKind, preview bool) (port.Admission, error) {
	if !preview {
		if g.maxConcurrent > 0 {
			processing, err := g.jobRepo.CountByStatus(ctx, vo.JobStatusProcessing)
			if err != nil {
				return port.AdmissionSaturated, err
			}
			if processing >= g.maxConcurrent {
				logger.Infof("concurrency cap reached job_id=%d processing=%d cap=%d", jobID, processing, g.maxConcurrent)
				return port.AdmissionSaturated, nil
			}
		}

		// The animation backend renders one batch at a time, so a second
		// deforum attempt must wait regardless of the global cap.
		if kind == vo.GeneratorDeforum {
			running, err := g.jobRepo.CountByStatusAndGenerator(ctx, vo.JobStatusProcessing, vo.GeneratorDeforum)
			if err != nil {
				return port.AdmissionSaturated, err
			}
			if running > 0 {
				logger.Infof("animation backend busy job_id=%d deforum_processing=%d", jobID, running)
				return port.AdmissionSaturated, nil
			}
		}
	}

	ok, err := g.locks.Put(ctx, lockKey(jobID), g.lockTTLSeconds)
	if err != nil {
		return port.AdmissionSaturated, err
	}
	if !ok {
		logger.Infof("execution lock held elsewhere job_id=%d", jobID)
		return port.AdmissionDuplicate, nil
	}
	return port.AdmissionGranted, nil
}

// Release drops the per-job lock. Safe to call when the lock already expired.
func (g *ConcurrencyGate) Release(ctx context.Context, jobID uint64) {
	if err := g.locks.Forget(ctx, lockKey(jobID)); err != nil {
		logger.Warnf("release execution lock failed job_id=%d err=%v", jobID, err)
	}
}
