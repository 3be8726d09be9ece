package vo

// OutcomeKind classifies how a single drive attempt ended. Drivers report
// control-flow results here instead of through errors; only genuine backend
// failures are returned as errors so the queue retry policy counts them.
type OutcomeKind string

const (
	// OutcomeFinished full render completed and stored.
	OutcomeFinished OutcomeKind = "finished"
	// OutcomePreview preview render completed.
	OutcomePreview OutcomeKind = "preview"
	// OutcomeRequeued admission denied or duplicate in-flight process; the
	// attempt should be released back with a delay, not counted as a retry.
	OutcomeRequeued OutcomeKind = "requeued"
	// OutcomeCancelled the job was cancelled while driving.
	OutcomeCancelled OutcomeKind = "cancelled"
	// OutcomeFailed the backend reported a terminal failure.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of one drive attempt.
type Outcome struct {
	Kind      OutcomeKind
	OutputURL string
	Detail    string
}
