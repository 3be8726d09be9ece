package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/vo"
)

func TestResetProgress(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusFinished, Progress: 100, EstimatedTimeLeft: 120}

	job.ResetProgress(vo.JobStatusProcessing)

	assert.Equal(t, vo.JobStatusProcessing, job.Status)
	assert.Equal(t, 5, job.Progress)
	assert.Equal(t, int64(0), job.EstimatedTimeLeft)
}

func TestResetProgressRestartsTerminalJob(t *testing.T) {
	// A fresh resubmission may restart a finished job; the validated
	// transition machine would refuse this.
	job := &VideoJob{Status: vo.JobStatusError}
	job.ResetProgress(vo.JobStatusApproved)
	assert.Equal(t, vo.JobStatusApproved, job.Status)
}

func TestTransitionTo(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusApproved}

	require.NoError(t, job.TransitionTo(vo.JobStatusProcessing))
	assert.Equal(t, vo.JobStatusProcessing, job.Status)

	err := job.TransitionTo(vo.JobStatusPending)
	require.Error(t, err)
	assert.Equal(t, vo.JobStatusProcessing, job.Status)
}

func TestUpdateProgressMonotoneWhileProcessing(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusProcessing, Progress: 40}

	job.UpdateProgress(10, 30, 60)
	assert.Equal(t, 40, job.Progress, "a lower sample must not roll progress back")

	job.UpdateProgress(20, 55, 45)
	assert.Equal(t, 55, job.Progress)
	assert.Equal(t, int64(20), job.JobTime)
	assert.Equal(t, int64(45), job.EstimatedTimeLeft)
}

func TestUpdateProgressClampsAtHundred(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusProcessing}
	job.UpdateProgress(10, 140, 0)
	assert.Equal(t, 100, job.Progress)
}

func TestMarkFinished(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusProcessing, Progress: 80, EstimatedTimeLeft: 12}

	job.MarkFinished("https://cdn.example.com/processed/out.mp4")

	assert.Equal(t, vo.JobStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, int64(0), job.EstimatedTimeLeft)
	assert.Equal(t, "https://cdn.example.com/processed/out.mp4", job.URL)
}

func TestMarkFinishedKeepsURLWhenEmpty(t *testing.T) {
	job := &VideoJob{URL: "https://cdn.example.com/old.mp4"}
	job.MarkFinished("")
	assert.Equal(t, "https://cdn.example.com/old.mp4", job.URL)
}

func TestMarkPreviewAndError(t *testing.T) {
	job := &VideoJob{Status: vo.JobStatusProcessing}
	job.MarkPreview()
	assert.Equal(t, vo.JobStatusPreview, job.Status)
	assert.Equal(t, 100, job.Progress)

	job = &VideoJob{Status: vo.JobStatusProcessing}
	job.MarkError(37)
	assert.Equal(t, vo.JobStatusError, job.Status)
	assert.Equal(t, int64(37), job.JobTime)
}

func TestNormalizeFrameCount(t *testing.T) {
	job := &VideoJob{FrameCount: 0}
	job.NormalizeFrameCount()
	assert.Equal(t, 1, job.FrameCount)

	job = &VideoJob{FrameCount: 96}
	job.NormalizeFrameCount()
	assert.Equal(t, 96, job.FrameCount)
}
