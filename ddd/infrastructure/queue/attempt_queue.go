package queue

import (
	"context"
	"fmt"
	"sync"

	"videogen-service/ddd/domain/port"
)

// AttemptQueue holds queued job attempts for the workers.
type AttemptQueue interface {
	// Enqueue adds an attempt without blocking; a full queue is an error.
	Enqueue(ctx context.Context, attempt *port.Attempt) error

	// Dequeue removes an attempt, blocking until one is available.
	Dequeue(ctx context.Context) (*port.Attempt, error)

	// TryDequeue removes an attempt without blocking; empty returns nil, nil.
	TryDequeue(ctx context.Context) (*port.Attempt, error)

	Size() int
	IsEmpty() bool
	Close() error
	IsClosed() bool
}

// MemoryAttemptQueue is a channel-backed in-process attempt queue.
type MemoryAttemptQueue struct {
	queue   chan *port.Attempt
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics tracks queue throughput.
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

func NewMemoryAttemptQueue(capacity int) AttemptQueue {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryAttemptQueue{
		queue: make(chan *port.Attempt, capacity),
		metrics: &QueueMetrics{
			MaxSize: capacity,
		},
	}
}

func (q *MemoryAttemptQueue) Enqueue(ctx context.Context, attempt *port.Attempt) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}

	select {
	case q.queue <- attempt:
		q.updateEnqueueMetrics()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *MemoryAttemptQueue) Dequeue(ctx context.Context) (*port.Attempt, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case attempt := <-q.queue:
		q.updateDequeueMetrics()
		return attempt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryAttemptQueue) TryDequeue(ctx context.Context) (*port.Attempt, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case attempt := <-q.queue:
		q.updateDequeueMetrics()
		return attempt, nil
	default:
		return nil, nil
	}
}

func (q *MemoryAttemptQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}
	return len(q.queue)
}

func (q *MemoryAttemptQueue) IsEmpty() bool {
	return q.Size() == 0
}

func (q *MemoryAttemptQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *MemoryAttemptQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics returns a snapshot of queue throughput counters.
func (q *MemoryAttemptQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	metrics := QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
	}
	metrics.CurrentSize = q.Size()
	return metrics
}

func (q *MemoryAttemptQueue) updateEnqueueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.EnqueueCount++
}

func (q *MemoryAttemptQueue) updateDequeueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.DequeueCount++
}
