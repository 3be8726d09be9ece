package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusPending, JobStatusApproved, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusProcessing, false},
		{JobStatusApproved, JobStatusProcessing, true},
		{JobStatusApproved, JobStatusError, true},
		{JobStatusApproved, JobStatusFinished, false},
		{JobStatusProcessing, JobStatusFinished, true},
		{JobStatusProcessing, JobStatusPreview, true},
		// Demotion back to approved is the backpressure path.
		{JobStatusProcessing, JobStatusApproved, true},
		{JobStatusProcessing, JobStatusCancelled, true},
		{JobStatusProcessing, JobStatusPending, false},
		{JobStatusPreview, JobStatusApproved, true},
		{JobStatusPreview, JobStatusProcessing, true},
		{JobStatusPreview, JobStatusFinished, false},
		{JobStatusFinished, JobStatusProcessing, false},
		{JobStatusError, JobStatusApproved, false},
		{JobStatusCancelled, JobStatusApproved, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, JobStatusFinished.IsTerminal())
	assert.True(t, JobStatusError.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.False(t, JobStatusPreview.IsTerminal())
}

func TestNewJobStatusFromString(t *testing.T) {
	status, ok := NewJobStatusFromString("processing")
	assert.True(t, ok)
	assert.Equal(t, JobStatusProcessing, status)

	_, ok = NewJobStatusFromString("exploded")
	assert.False(t, ok)
}
