package dto

import (
	"time"

	"videogen-service/ddd/domain/entity"
)

// VideoJobDto is the submission response payload.
type VideoJobDto struct {
	ID                uint64  `json:"id"`
	Status            string  `json:"status"`
	Seed              int64   `json:"seed"`
	JobTime           int64   `json:"job_time"`
	Progress          int     `json:"progress"`
	EstimatedTimeLeft int64   `json:"estimated_time_left"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Length            float64 `json:"length"`
	FPS               int     `json:"fps"`
	URL               string  `json:"url,omitempty"`
}

// VideoJobDTO alias.
type VideoJobDTO = VideoJobDto

// NewVideoJobDto builds the submission payload from an entity.
func NewVideoJobDto(e *entity.VideoJob) *VideoJobDto {
	if e == nil {
		return nil
	}
	return &VideoJobDto{
		ID:                e.ID,
		Status:            e.Status.String(),
		Seed:              e.Seed,
		JobTime:           e.JobTime,
		Progress:          e.Progress,
		EstimatedTimeLeft: e.EstimatedTimeLeft,
		Width:             e.Width,
		Height:            e.Height,
		Length:            e.Length,
		FPS:               e.FPS,
		URL:               e.URL,
	}
}

// JobQueueDto describes where an approved job waits.
type JobQueueDto struct {
	Lane     string `json:"lane"`
	Position int    `json:"position,omitempty"`
	Depth    int    `json:"depth"`
}

// JobStatusDto is the live status payload.
type JobStatusDto struct {
	Status            string       `json:"status"`
	Progress          int          `json:"progress"`
	EstimatedTimeLeft int64        `json:"estimated_time_left"`
	JobTime           int64        `json:"job_time"`
	QueuedAt          *time.Time   `json:"queued_at,omitempty"`
	Queue             *JobQueueDto `json:"queue,omitempty"`
}

// NewJobStatusDto builds the status payload from an entity.
func NewJobStatusDto(e *entity.VideoJob) *JobStatusDto {
	if e == nil {
		return nil
	}
	return &JobStatusDto{
		Status:            e.Status.String(),
		Progress:          e.Progress,
		EstimatedTimeLeft: e.EstimatedTimeLeft,
		JobTime:           e.JobTime,
		QueuedAt:          e.QueuedAt,
	}
}

// FinalizeDto is the finalize/cancel response payload.
type FinalizeDto struct {
	Status            string     `json:"status"`
	Progress          int        `json:"progress"`
	JobTime           int64      `json:"job_time"`
	Retries           int        `json:"retries"`
	QueuedAt          *time.Time `json:"queued_at,omitempty"`
	EstimatedTimeLeft int64      `json:"estimated_time_left"`
}

// NewFinalizeDto builds the finalize payload from an entity.
func NewFinalizeDto(e *entity.VideoJob) *FinalizeDto {
	if e == nil {
		return nil
	}
	return &FinalizeDto{
		Status:            e.Status.String(),
		Progress:          e.Progress,
		JobTime:           e.JobTime,
		Retries:           e.Retries,
		QueuedAt:          e.QueuedAt,
		EstimatedTimeLeft: e.EstimatedTimeLeft,
	}
}
