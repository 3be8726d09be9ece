package queue

import (
	"context"
	"sync"
	"time"

	"videogen-service/ddd/domain/port"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// Lane identifies one scheduling lane.
type Lane int

const (
	LaneHigh Lane = iota
	LaneMedium
	LaneLow
)

// LaneQueue schedules attempts across three priority lanes and deduplicates
// identical submissions while one is still queued. Dequeue drains high before
// medium before low, so a burst of long renders never starves the short ones.
type LaneQueue struct {
	lanes [3]AttemptQueue
	names [3]string

	mu        sync.Mutex
	queued    map[string]time.Time // unique id -> dedup expiry
	uniqueFor time.Duration

	closed  bool
	timers  sync.WaitGroup
	pending map[*time.Timer]struct{}
}

// NewLaneQueue builds the three lanes. names carries the configured lane
// names in high, medium, low order and is used for logging only.
func NewLaneQueue(capacity int, uniqueFor time.Duration, names [3]string) *LaneQueue {
	if uniqueFor <= 0 {
		uniqueFor = time.Hour
	}
	return &LaneQueue{
		lanes: [3]AttemptQueue{
			NewMemoryAttemptQueue(capacity),
			NewMemoryAttemptQueue(capacity),
			NewMemoryAttemptQueue(capacity),
		},
		names:     names,
		queued:    map[string]time.Time{},
		uniqueFor: uniqueFor,
		pending:   map[*time.Timer]struct{}{},
	}
}

// Enqueue adds an attempt to a lane. A second identical submission while the
// first is still queued (and its dedup window has not lapsed) is rejected.
func (lq *LaneQueue) Enqueue(ctx context.Context, attempt *port.Attempt, lane Lane) error {
	id := attempt.UniqueID()

	lq.mu.Lock()
	if lq.closed {
		lq.mu.Unlock()
		return errno.NewBizError(errno.ErrQueueFull, nil)
	}
	if expiry, ok := lq.queued[id]; ok && time.Now().Before(expiry) {
		lq.mu.Unlock()
		logger.Infof("duplicate submission suppressed unique_id=%s lane=%s", id, lq.names[lane])
		return errno.NewBizError(errno.ErrDuplicateSubmission, nil)
	}
	lq.queued[id] = time.Now().Add(lq.uniqueFor)
	lq.mu.Unlock()

	if err := lq.lanes[lane].Enqueue(ctx, attempt); err != nil {
		lq.forget(id)
		return errno.NewBizError(errno.ErrQueueFull, err)
	}
	logger.Infof("attempt queued job_id=%d unique_id=%s lane=%s", attempt.JobID, id, lq.names[lane])
	return nil
}

// Dequeue removes the next attempt, highest lane first, blocking on the low
// lane when everything above is empty. The dedup entry is cleared so the same
// job can be resubmitted once the attempt is in flight.
func (lq *LaneQueue) Dequeue(ctx context.Context) (*port.Attempt, error) {
	for {
		for _, lane := range []Lane{LaneHigh, LaneMedium} {
			if attempt, err := lq.lanes[lane].TryDequeue(ctx); err == nil && attempt != nil {
				lq.forget(attempt.UniqueID())
				return attempt, nil
			}
		}
		if attempt, err := lq.lanes[LaneLow].TryDequeue(ctx); err == nil && attempt != nil {
			lq.forget(attempt.UniqueID())
			return attempt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Release re-enqueues an attempt after a delay, used when admission was
// refused so the attempt retries once capacity may be free again. The dedup
// window is bypassed: a released attempt is a continuation, not a new
// submission.
func (lq *LaneQueue) Release(attempt *port.Attempt, lane Lane, delay time.Duration) {
	lq.timers.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer lq.timers.Done()

		lq.mu.Lock()
		delete(lq.pending, timer)
		if lq.closed {
			lq.mu.Unlock()
			return
		}
		lq.queued[attempt.UniqueID()] = time.Now().Add(lq.uniqueFor)
		lq.mu.Unlock()

		if err := lq.lanes[lane].Enqueue(context.Background(), attempt); err != nil {
			lq.forget(attempt.UniqueID())
			logger.Errorf("release re-enqueue failed job_id=%d err=%v", attempt.JobID, err)
		}
	})

	lq.mu.Lock()
	if lq.closed {
		// Closed between the caller's check and here; cancel immediately.
		if timer.Stop() {
			lq.timers.Done()
		}
		lq.mu.Unlock()
		return
	}
	lq.pending[timer] = struct{}{}
	lq.mu.Unlock()
}

// Size reports the number of queued attempts across all lanes.
func (lq *LaneQueue) Size() int {
	total := 0
	for _, q := range lq.lanes {
		total += q.Size()
	}
	return total
}

// Close shuts all lanes. Pending release timers are cancelled and any release
// already firing is drained before the lanes close underneath it.
func (lq *LaneQueue) Close() error {
	lq.mu.Lock()
	lq.closed = true
	for timer := range lq.pending {
		if timer.Stop() {
			lq.timers.Done()
		}
		delete(lq.pending, timer)
	}
	lq.mu.Unlock()

	lq.timers.Wait()

	for _, q := range lq.lanes {
		_ = q.Close()
	}
	return nil
}

func (lq *LaneQueue) forget(id string) {
	lq.mu.Lock()
	delete(lq.queued, id)
	lq.mu.Unlock()
}
