package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/port"
)

func TestMemoryAttemptQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryAttemptQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &port.Attempt{JobID: 1}))
	require.NoError(t, q.Enqueue(ctx, &port.Attempt{JobID: 2}))
	assert.Equal(t, 2, q.Size())

	attempt, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), attempt.JobID)
}

func TestMemoryAttemptQueueFull(t *testing.T) {
	q := NewMemoryAttemptQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &port.Attempt{JobID: 1}))
	assert.Error(t, q.Enqueue(ctx, &port.Attempt{JobID: 2}))
}

func TestMemoryAttemptQueueTryDequeueEmpty(t *testing.T) {
	q := NewMemoryAttemptQueue(1)

	attempt, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, attempt)
}

func TestMemoryAttemptQueueRejectsNil(t *testing.T) {
	q := NewMemoryAttemptQueue(1)
	assert.Error(t, q.Enqueue(context.Background(), nil))
}

func TestMemoryAttemptQueueClose(t *testing.T) {
	q := NewMemoryAttemptQueue(1)
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.Error(t, q.Enqueue(context.Background(), &port.Attempt{JobID: 1}))
	require.NoError(t, q.Close())
}

func TestMemoryAttemptQueueMetrics(t *testing.T) {
	q := NewMemoryAttemptQueue(4).(*MemoryAttemptQueue)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &port.Attempt{JobID: 1}))
	require.NoError(t, q.Enqueue(ctx, &port.Attempt{JobID: 2}))
	_, err := q.Dequeue(ctx)
	require.NoError(t, err)

	metrics := q.GetMetrics()
	assert.Equal(t, uint64(2), metrics.EnqueueCount)
	assert.Equal(t, uint64(1), metrics.DequeueCount)
	assert.Equal(t, 1, metrics.CurrentSize)
}
