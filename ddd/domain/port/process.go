package port

// ProcessController tracks live backend subprocesses by job id. It replaces
// process-list pattern matching: only handles this service launched itself
// can ever be killed, so an unrelated process can never be hit.
type ProcessController interface {
	IsRunning(jobID uint64) bool
	// Kill terminates the tracked process for the job, if any. Missing
	// processes are not an error; cancellation is best-effort.
	Kill(jobID uint64) error
}
