package vo

// JobStatus is the lifecycle status of a video generation job.
type JobStatus string

const (
	// JobStatusPending uploaded, awaiting submission.
	JobStatusPending JobStatus = "pending"
	// JobStatusApproved accepted and queued, not yet picked up.
	JobStatusApproved JobStatus = "approved"
	// JobStatusProcessing a worker is driving the backend.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusPreview a low-frame-count preview render completed.
	JobStatusPreview JobStatus = "preview"
	// JobStatusFinished full render completed, artifact stored.
	JobStatusFinished JobStatus = "finished"
	// JobStatusError backend failed, timed out, or the job went stale.
	JobStatusError JobStatus = "error"
	// JobStatusCancelled cancelled by the user.
	JobStatusCancelled JobStatus = "cancelled"
)

// IsValid reports whether the status is a known value.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusApproved, JobStatusProcessing,
		JobStatusPreview, JobStatusFinished, JobStatusError, JobStatusCancelled:
		return true
	default:
		return false
	}
}

func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends the current submission.
// A fresh resubmission may still reset a terminal job via ResetProgress.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusFinished || s == JobStatusError || s == JobStatusCancelled
}

// CanTransitionTo validates a status transition. Demotion from processing
// back to approved is legal: it is the backpressure path, not a failure.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusApproved || target == JobStatusCancelled
	case JobStatusApproved:
		return target == JobStatusProcessing || target == JobStatusCancelled || target == JobStatusError
	case JobStatusProcessing:
		return target == JobStatusFinished || target == JobStatusPreview ||
			target == JobStatusError || target == JobStatusApproved || target == JobStatusCancelled
	case JobStatusPreview:
		return target == JobStatusApproved || target == JobStatusProcessing ||
			target == JobStatusError || target == JobStatusCancelled
	case JobStatusFinished, JobStatusError, JobStatusCancelled:
		return false
	default:
		return false
	}
}

// NewJobStatusFromString parses a persisted status value.
func NewJobStatusFromString(s string) (JobStatus, bool) {
	status := JobStatus(s)
	return status, status.IsValid()
}
