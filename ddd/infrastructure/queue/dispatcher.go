package queue

import (
	"context"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/port"
)

// Dispatcher routes job attempts into lanes. Short renders (a single frame,
// i.e. a still preview) go to the high lane, full renders to medium, and
// finalization passes to low so they never delay interactive work.
type Dispatcher struct {
	queue *LaneQueue
}

func NewDispatcher(queue *LaneQueue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// LaneFor picks the lane for a job attempt.
func LaneFor(frameCount int, finalize bool) Lane {
	if finalize {
		return LaneLow
	}
	if frameCount <= 1 {
		return LaneHigh
	}
	return LaneMedium
}

// DispatchGenerate queues the generation attempt for a job.
func (d *Dispatcher) DispatchGenerate(ctx context.Context, job *entity.VideoJob, previewFrames int, extendFromJobID uint64) error {
	attempt := &port.Attempt{
		JobID:           job.ID,
		Generator:       job.Generator,
		PreviewFrames:   previewFrames,
		ExtendFromJobID: extendFromJobID,
		Attempts:        0,
		FirstQueuedAt:   time.Now(),
	}
	return d.queue.Enqueue(ctx, attempt, LaneFor(job.FrameCount, false))
}

// DispatchFinalize queues the finalization attempt for a job.
func (d *Dispatcher) DispatchFinalize(ctx context.Context, job *entity.VideoJob) error {
	attempt := &port.Attempt{
		JobID:         job.ID,
		Generator:     job.Generator,
		Attempts:      0,
		FirstQueuedAt: time.Now(),
	}
	return d.queue.Enqueue(ctx, attempt, LaneFor(job.FrameCount, true))
}

// Requeue puts a failed attempt back with a backoff delay.
func (d *Dispatcher) Requeue(attempt *port.Attempt, lane Lane, backoff time.Duration) {
	d.queue.Release(attempt, lane, backoff)
}
