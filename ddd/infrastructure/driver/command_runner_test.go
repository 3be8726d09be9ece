package driver

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/pkg/errno"
)

type stubTracker struct {
	reject       bool
	registered   int
	unregistered int
}

func (s *stubTracker) Register(jobID uint64, proc *os.Process) bool {
	if s.reject {
		return false
	}
	s.registered++
	return true
}

func (s *stubTracker) Unregister(jobID uint64) { s.unregistered++ }

func TestExecCommandRunnerCapturesStdout(t *testing.T) {
	tracker := &stubTracker{}
	runner := NewExecCommandRunner(tracker)

	out, err := runner.Run(context.Background(), 7, "echo", []string{"hello"})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.Equal(t, 1, tracker.registered)
	assert.Equal(t, 1, tracker.unregistered)
}

func TestExecCommandRunnerSubprocessFailure(t *testing.T) {
	runner := NewExecCommandRunner(&stubTracker{})

	_, err := runner.Run(context.Background(), 7, "false", nil)
	assert.Error(t, err)
}

func TestExecCommandRunnerRejectsDuplicateProcess(t *testing.T) {
	tracker := &stubTracker{reject: true}
	runner := NewExecCommandRunner(tracker)

	_, err := runner.Run(context.Background(), 7, "sleep", []string{"60"})

	require.Error(t, err)
	var bizErr *errno.BizError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, errno.ErrProcessAlreadyRunning.Code, bizErr.Code)
	assert.Equal(t, 0, tracker.unregistered, "a rejected process must not unregister the live one")
}
