package vo

// Remote phase names reported by the Deforum job API.
const (
	RemotePhaseQueued     = "QUEUED"
	RemotePhaseGenerating = "GENERATING"
	RemotePhaseDone       = "DONE"
)

// Remote status names reported by the Deforum job API. Anything outside
// ACCEPTED/SUCCEEDED is a terminal failure.
const (
	RemoteStatusAccepted  = "ACCEPTED"
	RemoteStatusSucceeded = "SUCCEEDED"
)

// RemoteJob is one poll response from the Deforum job API.
type RemoteJob struct {
	Status        string  `json:"status"`
	Phase         string  `json:"phase"`
	PhaseProgress float64 `json:"phase_progress"`
	ExecutionTime float64 `json:"execution_time"`
	Outdir        string  `json:"outdir"`
	Timestring    string  `json:"timestring"`
	Message       string  `json:"message,omitempty"`
}

// Succeeded reports terminal success.
func (r *RemoteJob) Succeeded() bool {
	return r.Status == RemoteStatusSucceeded && r.Phase == RemotePhaseDone
}

// Failed reports a terminal failure phase.
func (r *RemoteJob) Failed() bool {
	return r.Status != RemoteStatusAccepted && r.Status != RemoteStatusSucceeded
}
