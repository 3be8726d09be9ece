package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/queue"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// VideoJobWorker pulls job attempts from the priority lanes and drives them
// to a terminal state.
type VideoJobWorker interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetStats() WorkerStats
}

// WorkerStats counts attempt outcomes since start.
type WorkerStats struct {
	ProcessedAttempts  uint64
	SuccessfulAttempts uint64
	FailedAttempts     uint64
	RequeuedAttempts   uint64
	StartTime          time.Time
	LastAttemptTime    time.Time
}

type videoJobWorkerImpl struct {
	id          string
	laneQueue   *queue.LaneQueue
	jobRepo     repo.VideoJobRepository
	gate        port.ConcurrencyGate
	reaper      *service.StaleJobReaper
	drivers     map[vo.GeneratorKind]port.Driver
	cfg         *config.Config
	workerCount int

	running bool
	cancel  context.CancelFunc
	stats   WorkerStats
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

func NewVideoJobWorker(
	id string,
	laneQueue *queue.LaneQueue,
	jobRepo repo.VideoJobRepository,
	gate port.ConcurrencyGate,
	reaper *service.StaleJobReaper,
	drivers []port.Driver,
	cfg *config.Config,
	workerCount int,
) VideoJobWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	byKind := make(map[vo.GeneratorKind]port.Driver, len(drivers))
	for _, d := range drivers {
		byKind[d.Kind()] = d
	}
	return &videoJobWorkerImpl{
		id:          id,
		laneQueue:   laneQueue,
		jobRepo:     jobRepo,
		gate:        gate,
		reaper:      reaper,
		drivers:     byKind,
		cfg:         cfg,
		workerCount: workerCount,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

func (w *videoJobWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("starting video job worker id=%s goroutines=%d", w.id, w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

func (w *videoJobWorkerImpl) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	logger.Infof("stopping video job worker id=%s", w.id)

	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false
	return nil
}

func (w *videoJobWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *videoJobWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *videoJobWorkerImpl) workerLoop(ctx context.Context, index int) {
	defer w.wg.Done()
	logger.Infof("worker loop started id=%s index=%d", w.id, index)

	for {
		attempt, err := w.laneQueue.Dequeue(ctx)
		if err != nil {
			logger.Infof("worker loop exiting id=%s index=%d reason=%v", w.id, index, err)
			return
		}
		if attempt == nil {
			continue
		}
		w.handleAttempt(ctx, attempt)
	}
}

// handleAttempt runs one attempt end to end. The sweep, the admission check
// and the drive all happen inside this one call so a worker never holds more
// than one job at a time.
func (w *videoJobWorkerImpl) handleAttempt(ctx context.Context, attempt *port.Attempt) {
	started := time.Now()
	w.recordAttempt()

	if reaped, err := w.reaper.Sweep(ctx); err != nil {
		logger.Warnf("stale sweep failed err=%v", err)
	} else if reaped > 0 {
		logger.Infof("stale sweep reaped jobs count=%d", reaped)
	}

	job, err := w.jobRepo.Get(ctx, attempt.JobID)
	if err != nil {
		logger.Errorf("load job failed job_id=%d err=%v", attempt.JobID, err)
		return
	}
	if job.Status == vo.JobStatusCancelled {
		logger.Infof("skipping cancelled job job_id=%d", job.ID)
		return
	}

	admission, err := w.gate.TryAcquire(ctx, job.ID, job.Generator, attempt.IsPreview())
	if err != nil {
		logger.Errorf("gate acquire failed job_id=%d err=%v", job.ID, err)
		w.releaseAttempt(job, attempt)
		return
	}
	if admission != port.AdmissionGranted {
		// Backpressure, not failure: demote an already-processing job back
		// to approved and retry the attempt after a short delay.
		if job.Status == vo.JobStatusProcessing {
			if uerr := w.jobRepo.UpdateStatus(ctx, job.ID, vo.JobStatusApproved); uerr != nil {
				logger.Warnf("demote to approved failed job_id=%d err=%v", job.ID, uerr)
			}
		}
		w.recordRequeue()
		w.releaseAttempt(job, attempt)
		return
	}
	defer w.gate.Release(ctx, job.ID)

	job.ResetProgress(vo.JobStatusProcessing)
	job.JobTime = int64(time.Since(started).Seconds())
	if job.FrameCount > 0 {
		job.EstimatedTimeLeft = int64(job.Generator.InitialETASeconds(job.FrameCount))
	}
	if err := w.jobRepo.Update(ctx, job); err != nil {
		logger.Errorf("enter processing failed job_id=%d err=%v", job.ID, err)
		w.releaseAttempt(job, attempt)
		return
	}

	driver, ok := w.drivers[job.Generator]
	if !ok {
		logger.Errorf("no driver for generator job_id=%d generator=%s", job.ID, job.Generator)
		job.MarkError(int64(time.Since(started).Seconds()))
		if uerr := w.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, w.cfg.Pipeline.AttemptTimeout)
	outcome, driveErr := driver.Start(attemptCtx, job, *attempt)
	cancel()

	switch outcome.Kind {
	case vo.OutcomeFinished, vo.OutcomePreview:
		w.recordSuccess()
		logger.Infof("attempt succeeded job_id=%d outcome=%s url=%s duration=%ds",
			job.ID, outcome.Kind, outcome.OutputURL, job.JobTime)
	case vo.OutcomeCancelled:
		logger.Infof("attempt cancelled job_id=%d", job.ID)
	case vo.OutcomeRequeued:
		w.recordRequeue()
		w.releaseAttempt(job, attempt)
	default:
		w.recordFailure()
		w.handleFailure(ctx, job, attempt, started, driveErr)
	}
}

// handleFailure applies the retry policy: count the retry on the record,
// stamp queued_at, and put the attempt back with backoff while it is still
// inside the attempt and time budget.
func (w *videoJobWorkerImpl) handleFailure(ctx context.Context, job *entity.VideoJob, attempt *port.Attempt, started time.Time, driveErr error) {
	logger.Errorf("attempt failed job_id=%d attempts=%d err=%v", job.ID, attempt.Attempts+1, driveErr)

	now := time.Now()
	job.JobTime = int64(time.Since(started).Seconds())
	job.QueuedAt = &now
	job.Retries++
	if err := w.jobRepo.Update(ctx, job); err != nil {
		logger.Warnf("persist retry bookkeeping failed job_id=%d err=%v", job.ID, err)
	}

	attempt.Attempts++
	if attempt.Attempts >= w.cfg.Pipeline.MaxAttempts {
		logger.Errorf("attempt budget exhausted job_id=%d attempts=%d", job.ID, attempt.Attempts)
		return
	}
	if time.Since(attempt.FirstQueuedAt) >= w.cfg.Pipeline.RetryWindow {
		logger.Errorf("retry window exceeded job_id=%d first_queued_at=%s", job.ID, attempt.FirstQueuedAt)
		return
	}
	w.laneQueue.Release(attempt, queue.LaneFor(job.FrameCount, false), w.cfg.Pipeline.RetryBackoff)
}

func (w *videoJobWorkerImpl) releaseAttempt(job *entity.VideoJob, attempt *port.Attempt) {
	w.laneQueue.Release(attempt, queue.LaneFor(job.FrameCount, false), w.cfg.Pipeline.ReleaseDelay)
}

func (w *videoJobWorkerImpl) recordAttempt() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ProcessedAttempts++
	w.stats.LastAttemptTime = time.Now()
}

func (w *videoJobWorkerImpl) recordSuccess() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.SuccessfulAttempts++
}

func (w *videoJobWorkerImpl) recordFailure() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.FailedAttempts++
}

func (w *videoJobWorkerImpl) recordRequeue() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.RequeuedAttempts++
}
