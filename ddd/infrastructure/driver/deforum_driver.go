package driver

import (
	"context"
	"fmt"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/storage"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// RemoteAPI is the slice of the backend job API the driver polls.
type RemoteAPI interface {
	GetJob(ctx context.Context, handle string) (*vo.RemoteJob, error)
	DeleteJob(ctx context.Context, handle string) error
}

// DeforumDriver submits an animation batch and then polls the backend job
// API until it reaches a terminal state, feeding every progress sample
// through the estimator and persisting it.
type DeforumDriver struct {
	cfg       *config.Config
	jobRepo   repo.VideoJobRepository
	storage   gateway.StorageGateway
	procs     port.ProcessController
	submitter Submitter
	remote    RemoteAPI
	sink      port.ProgressSink
	mover     *storage.ArtifactMover
}

func NewDeforumDriver(
	cfg *config.Config,
	jobRepo repo.VideoJobRepository,
	storageGw gateway.StorageGateway,
	procs port.ProcessController,
	submitter Submitter,
	remote RemoteAPI,
	sink port.ProgressSink,
) *DeforumDriver {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &DeforumDriver{
		cfg:       cfg,
		jobRepo:   jobRepo,
		storage:   storageGw,
		procs:     procs,
		submitter: submitter,
		remote:    remote,
		sink:      sink,
		mover:     storage.NewArtifactMover(cfg.Pipeline.ProcessedPath, cfg.Pipeline.PreviewPath),
	}
}

func (d *DeforumDriver) Kind() vo.GeneratorKind {
	return vo.GeneratorDeforum
}

func (d *DeforumDriver) Start(ctx context.Context, job *entity.VideoJob, attempt port.Attempt) (vo.Outcome, error) {
	if !attempt.IsPreview() && d.procs.IsRunning(job.ID) {
		if job.Status == vo.JobStatusProcessing {
			if err := d.jobRepo.UpdateStatus(ctx, job.ID, vo.JobStatusApproved); err != nil {
				return vo.Outcome{Kind: vo.OutcomeRequeued}, err
			}
			job.Status = vo.JobStatusApproved
		}
		logger.Infof("job already has a live submission process, backing off job_id=%d", job.ID)
		return vo.Outcome{Kind: vo.OutcomeRequeued, Detail: "duplicate in-flight process"}, nil
	}

	job.Seed = service.NormalizeSeed(job.Seed)
	prompt, negativePrompt := service.DecoratePrompts(
		job.Prompt, job.NegativePrompt,
		d.cfg.Pipeline.PromptSuffix, d.cfg.Pipeline.NegativePromptSuffix,
	)

	submitCtx, cancel := context.WithTimeout(ctx, d.cfg.Pipeline.SubprocessTimeout)
	handle, err := d.submitter.Submit(submitCtx, job, prompt, negativePrompt)
	cancel()
	if err != nil {
		job.MarkError(0)
		if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: err.Error()}, err
	}
	if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
		logger.Warnf("persist submission parameters failed job_id=%d err=%v", job.ID, uerr)
	}

	return d.poll(ctx, job, attempt, handle)
}

func (d *DeforumDriver) poll(ctx context.Context, job *entity.VideoJob, attempt port.Attempt, handle string) (vo.Outcome, error) {
	started := time.Now()
	estimator := service.NewProgressEstimator()

	for {
		// The record is the coordination point: cancellation and the stale
		// reaper flip it underneath the poll loop.
		current, err := d.jobRepo.Get(ctx, job.ID)
		if err != nil {
			return vo.Outcome{Kind: vo.OutcomeFailed}, err
		}
		job.Status = current.Status

		if job.Status == vo.JobStatusCancelled || job.Status == vo.JobStatusError {
			if derr := d.remote.DeleteJob(ctx, handle); derr != nil {
				logger.Warnf("remote batch delete failed job_id=%d handle=%s err=%v", job.ID, handle, derr)
			}
			if job.Status == vo.JobStatusCancelled {
				logger.Infof("poll loop stopped, job cancelled job_id=%d handle=%s", job.ID, handle)
				return vo.Outcome{Kind: vo.OutcomeCancelled}, nil
			}
			logger.Infof("poll loop stopped, job flipped to error job_id=%d handle=%s", job.ID, handle)
			return vo.Outcome{Kind: vo.OutcomeFailed, Detail: "job marked error while polling"}, nil
		}

		remote, err := d.remote.GetJob(ctx, handle)
		if err != nil {
			// Transient backend unavailability is a retryable failure.
			return vo.Outcome{Kind: vo.OutcomeFailed, Detail: err.Error()}, err
		}

		switch remote.Phase {
		case vo.RemotePhaseQueued:
			if job.Status != vo.JobStatusApproved {
				if uerr := d.jobRepo.UpdateStatus(ctx, job.ID, vo.JobStatusApproved); uerr == nil {
					job.Status = vo.JobStatusApproved
				}
			}
		case vo.RemotePhaseGenerating:
			if job.Status != vo.JobStatusProcessing {
				if uerr := d.jobRepo.UpdateStatus(ctx, job.ID, vo.JobStatusProcessing); uerr == nil {
					job.Status = vo.JobStatusProcessing
				}
			}
			progressPct := remote.PhaseProgress * 100
			estimator.Observe(remote.ExecutionTime, progressPct)
			eta := job.EstimatedTimeLeft
			if v, ok := estimator.ETASeconds(remote.ExecutionTime); ok {
				eta = v
			}
			if serr := d.sink.SaveProgress(ctx, job, int(progressPct), eta, int64(remote.ExecutionTime)); serr != nil {
				logger.Warnf("save progress failed job_id=%d err=%v", job.ID, serr)
			}
		}

		if remote.Succeeded() {
			return d.finalize(ctx, job, attempt, remote, started)
		}
		if remote.Failed() {
			elapsed := int64(time.Since(started).Seconds())
			job.MarkError(elapsed)
			if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
				logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
			}
			err := fmt.Errorf("backend reported terminal failure status=%s phase=%s message=%s",
				remote.Status, remote.Phase, remote.Message)
			return vo.Outcome{Kind: vo.OutcomeFailed, Detail: err.Error()}, err
		}

		select {
		case <-ctx.Done():
			elapsed := int64(time.Since(started).Seconds())
			job.MarkError(elapsed)
			if uerr := d.jobRepo.Update(context.Background(), job); uerr != nil {
				logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
			}
			return vo.Outcome{Kind: vo.OutcomeFailed, Detail: "attempt timed out"}, ctx.Err()
		case <-time.After(d.cfg.Pipeline.PollInterval):
		}
	}
}

func (d *DeforumDriver) finalize(ctx context.Context, job *entity.VideoJob, attempt port.Attempt, remote *vo.RemoteJob, started time.Time) (vo.Outcome, error) {
	elapsed := int64(time.Since(started).Seconds())
	artifacts := storage.ArtifactsFor(remote.Timestring)

	videoPath, err := d.mover.Move(remote.Outdir, artifacts.Video, true)
	if err != nil {
		job.MarkError(elapsed)
		if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: err.Error()}, err
	}
	job.Outfile = artifacts.Video

	objectKey := "processed/" + artifacts.Video
	outputURL := d.storage.PublicURL(objectKey)
	if _, upErr := d.storage.UploadProcessedFile(ctx, videoPath, objectKey, "video/mp4"); upErr != nil {
		job.MarkError(elapsed)
		if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: upErr.Error()}, upErr
	}

	if animationPath, aerr := d.mover.MovePreview(remote.Outdir, artifacts.Animation); aerr == nil && animationPath != "" {
		animationKey := "preview/" + artifacts.Animation
		if _, uerr := d.storage.UploadProcessedFile(ctx, animationPath, animationKey, "image/gif"); uerr == nil {
			job.PreviewAnimation = d.storage.PublicURL(animationKey)
		}
	}
	if previewPath, perr := d.mover.MovePreview(remote.Outdir, artifacts.Preview); perr == nil && previewPath != "" {
		previewKey := "preview/" + artifacts.Preview
		if _, uerr := d.storage.UploadProcessedFile(ctx, previewPath, previewKey, "image/png"); uerr == nil {
			job.PreviewImage = d.storage.PublicURL(previewKey)
		}
	}

	job.NormalizeFrameCount()
	job.JobTime = elapsed
	if attempt.IsPreview() {
		job.MarkPreview()
	} else {
		job.MarkFinished(outputURL)
	}
	if err := d.jobRepo.Update(ctx, job); err != nil {
		return vo.Outcome{Kind: vo.OutcomeFailed}, err
	}

	logger.Infof("animation finished job_id=%d frames=%d elapsed=%ds speed=%d frames/s",
		job.ID, job.FrameCount, elapsed, framesPerSecond(job.FrameCount, elapsed))

	if attempt.IsPreview() {
		return vo.Outcome{Kind: vo.OutcomePreview, OutputURL: outputURL}, nil
	}
	return vo.Outcome{Kind: vo.OutcomeFinished, OutputURL: outputURL}, nil
}
