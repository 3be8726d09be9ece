package entity

import (
	"time"

	"videogen-service/ddd/domain/vo"
)

// VideoJob is the persistent state of one generation request. It is owned by
// the submitting user and mutated only by the pipeline; HTTP handlers assign
// fields and hand the record to a service, they never drive transitions.
type VideoJob struct {
	ID     uint64
	UserID uint64

	Generator vo.GeneratorKind
	Status    vo.JobStatus

	// Generation parameters.
	Prompt               string
	NegativePrompt       string
	Seed                 int64
	ModelID              uint64
	FrameCount           int
	Length               float64
	FPS                  int
	Width                int
	Height               int
	CfgScale             float64
	Denoising            float64
	Controlnet           string // opaque JSON blob
	GenerationParameters string // opaque JSON blob recorded at dispatch
	Revision             string

	// Media locations.
	Filename         string
	OriginalFilename string
	Mimetype         string
	Size             int64
	OriginalPath     string
	OriginalURL      string
	Outfile          string
	URL              string
	PreviewImage     string
	PreviewAnimation string

	// Progress and timing.
	Progress          int
	JobTime           int64
	EstimatedTimeLeft int64
	Retries           int
	QueuedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// progressBaseline is the small nonzero progress a job shows immediately
// after a reset, so the UI renders an active bar instead of an empty one.
const progressBaseline = 5

// ResetProgress moves the job into the given status with progress back at the
// baseline and the ETA cleared. This is the explicit reset path used by
// submission, finalization, cancellation and the error path; it intentionally
// bypasses CanTransitionTo because a fresh resubmission may restart a
// terminal job.
func (j *VideoJob) ResetProgress(status vo.JobStatus) {
	j.Status = status
	j.Progress = progressBaseline
	j.EstimatedTimeLeft = 0
	j.UpdatedAt = time.Now()
}

// TransitionTo applies a validated state-machine transition.
func (j *VideoJob) TransitionTo(target vo.JobStatus) error {
	if !j.Status.CanTransitionTo(target) {
		return NewDomainError("invalid transition " + j.Status.String() + " -> " + target.String())
	}
	j.Status = target
	j.UpdatedAt = time.Now()
	return nil
}

// UpdateProgress records a progress sample. Progress is monotone while the
// job is processing; a lower sample is ignored rather than rolled back.
func (j *VideoJob) UpdateProgress(jobTime int64, progress int, estimatedTimeLeft int64) {
	if j.Status == vo.JobStatusProcessing && progress < j.Progress {
		progress = j.Progress
	}
	if progress > 100 {
		progress = 100
	}
	j.JobTime = jobTime
	j.Progress = progress
	j.EstimatedTimeLeft = estimatedTimeLeft
	j.UpdatedAt = time.Now()
}

// MarkFinished finalizes a successful full render.
func (j *VideoJob) MarkFinished(outputURL string) {
	j.Status = vo.JobStatusFinished
	j.Progress = 100
	j.EstimatedTimeLeft = 0
	if outputURL != "" {
		j.URL = outputURL
	}
	j.UpdatedAt = time.Now()
}

// MarkPreview finalizes a preview render.
func (j *VideoJob) MarkPreview() {
	j.Status = vo.JobStatusPreview
	j.Progress = 100
	j.EstimatedTimeLeft = 0
	j.UpdatedAt = time.Now()
}

// MarkError records a failed attempt, preserving partial timing.
func (j *VideoJob) MarkError(jobTime int64) {
	j.Status = vo.JobStatusError
	j.JobTime = jobTime
	j.UpdatedAt = time.Now()
}

// NormalizeFrameCount promotes a zero frame count to one after completion so
// frames/s reporting never divides by zero.
func (j *VideoJob) NormalizeFrameCount() {
	if j.FrameCount <= 0 {
		j.FrameCount = 1
	}
}

// IsTerminal reports whether the current submission has ended.
func (j *VideoJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// DomainError signals a violated domain invariant.
type DomainError struct {
	message string
}

func NewDomainError(message string) *DomainError {
	return &DomainError{message: message}
}

func (e *DomainError) Error() string {
	return e.message
}
