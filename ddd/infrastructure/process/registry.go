package process

import (
	"os"
	"sync"
	"syscall"

	"videogen-service/pkg/logger"
)

// Registry tracks the OS processes the drivers spawn, keyed by job ID. It
// replaces scanning the process table: a driver registers the subprocess it
// started and anyone holding a job ID can check or kill it.
type Registry struct {
	mu    sync.RWMutex
	procs map[uint64]*os.Process
}

func NewRegistry() *Registry {
	return &Registry{procs: make(map[uint64]*os.Process)}
}

// Register records the running subprocess for a job, returning false when a
// process is already registered for it.
func (r *Registry) Register(jobID uint64, proc *os.Process) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.procs[jobID]; exists {
		return false
	}
	r.procs[jobID] = proc
	return true
}

// Unregister forgets the subprocess for a job. Must run when the process
// exits, on every path.
func (r *Registry) Unregister(jobID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, jobID)
}

// IsRunning reports whether a subprocess is currently registered for the job.
func (r *Registry) IsRunning(jobID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.procs[jobID]
	return ok
}

// Kill terminates the registered subprocess for the job, if any. Best effort:
// a process that already exited is treated as success.
func (r *Registry) Kill(jobID uint64) error {
	r.mu.Lock()
	proc, ok := r.procs[jobID]
	if ok {
		delete(r.procs, jobID)
	}
	r.mu.Unlock()

	if !ok || proc == nil {
		return nil
	}
	if err := proc.Kill(); err != nil {
		if err == os.ErrProcessDone || err == syscall.ESRCH {
			return nil
		}
		logger.Warnf("kill subprocess failed job_id=%d pid=%d err=%v", jobID, proc.Pid, err)
		return err
	}
	logger.Infof("subprocess killed job_id=%d pid=%d", jobID, proc.Pid)
	return nil
}
