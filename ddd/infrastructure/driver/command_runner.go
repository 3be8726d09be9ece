package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// CommandRunner launches one backend subprocess for a job and returns its
// stdout. Implementations register the live process so cancellation can kill
// it by job id.
type CommandRunner interface {
	Run(ctx context.Context, jobID uint64, name string, args []string) (string, error)
}

// processTracker is the registration half of the process registry.
type processTracker interface {
	Register(jobID uint64, proc *os.Process) bool
	Unregister(jobID uint64)
}

type execCommandRunner struct {
	tracker processTracker
}

func NewExecCommandRunner(tracker processTracker) CommandRunner {
	return &execCommandRunner{tracker: tracker}
}

func (r *execCommandRunner) Run(ctx context.Context, jobID uint64, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Infof("launching backend subprocess job_id=%d command=%s %s", jobID, name, strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start backend subprocess: %w", err)
	}

	if !r.tracker.Register(jobID, cmd.Process) {
		// Lost the race against another attempt for the same job. Two
		// backend processes writing the same output would corrupt it.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return "", errno.NewBizError(errno.ErrProcessAlreadyRunning, nil)
	}
	defer r.tracker.Unregister(jobID)

	if err := cmd.Wait(); err != nil {
		return stdout.String(), fmt.Errorf("backend subprocess failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
