package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

func TestLaneFor(t *testing.T) {
	assert.Equal(t, LaneHigh, LaneFor(1, false))
	assert.Equal(t, LaneHigh, LaneFor(0, false))
	assert.Equal(t, LaneMedium, LaneFor(5, false))
	assert.Equal(t, LaneLow, LaneFor(1, true))
	assert.Equal(t, LaneLow, LaneFor(96, true))
}

func TestDispatchGeneratePicksLaneFromFrameCount(t *testing.T) {
	lq := NewLaneQueue(10, time.Hour, laneNames)
	d := NewDispatcher(lq)
	ctx := context.Background()

	still := &entity.VideoJob{ID: 1, Generator: vo.GeneratorVid2Vid, FrameCount: 1}
	require.NoError(t, d.DispatchGenerate(ctx, still, 1, 0))

	attempt, err := lq.lanes[LaneHigh].TryDequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, uint64(1), attempt.JobID)
	assert.Equal(t, 1, attempt.PreviewFrames)
	assert.True(t, attempt.IsPreview())
	assert.False(t, attempt.FirstQueuedAt.IsZero())
}

func TestDispatchGenerateFullRenderGoesMedium(t *testing.T) {
	lq := NewLaneQueue(10, time.Hour, laneNames)
	d := NewDispatcher(lq)
	ctx := context.Background()

	job := &entity.VideoJob{ID: 2, Generator: vo.GeneratorDeforum, FrameCount: 96}
	require.NoError(t, d.DispatchGenerate(ctx, job, 96, 0))

	attempt, err := lq.lanes[LaneMedium].TryDequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, vo.GeneratorDeforum, attempt.Generator)
}

func TestDispatchFinalizeGoesLow(t *testing.T) {
	lq := NewLaneQueue(10, time.Hour, laneNames)
	d := NewDispatcher(lq)
	ctx := context.Background()

	job := &entity.VideoJob{ID: 3, Generator: vo.GeneratorVid2Vid, FrameCount: 1}
	require.NoError(t, d.DispatchFinalize(ctx, job))

	attempt, err := lq.lanes[LaneLow].TryDequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.False(t, attempt.IsPreview(), "finalization renders the full result")
}
