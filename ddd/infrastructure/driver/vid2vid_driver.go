package driver

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// Vid2VidDriver runs the frame-by-frame restyling backend as a local
// subprocess and blocks until it exits. Success is decided by the exit code
// plus the presence of the output artifact.
type Vid2VidDriver struct {
	cfg     *config.Config
	jobRepo repo.VideoJobRepository
	storage gateway.StorageGateway
	procs   port.ProcessController
	runner  CommandRunner
}

func NewVid2VidDriver(cfg *config.Config, jobRepo repo.VideoJobRepository, storage gateway.StorageGateway, procs port.ProcessController, runner CommandRunner) *Vid2VidDriver {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &Vid2VidDriver{
		cfg:     cfg,
		jobRepo: jobRepo,
		storage: storage,
		procs:   procs,
		runner:  runner,
	}
}

func (d *Vid2VidDriver) Kind() vo.GeneratorKind {
	return vo.GeneratorVid2Vid
}

func (d *Vid2VidDriver) Start(ctx context.Context, job *entity.VideoJob, attempt port.Attempt) (vo.Outcome, error) {
	// A subprocess for this job may still be alive from a crashed-and-requeued
	// attempt. Back off instead of racing it; job_time stays untouched.
	if !attempt.IsPreview() && d.procs.IsRunning(job.ID) {
		if job.Status == vo.JobStatusProcessing {
			if err := d.jobRepo.UpdateStatus(ctx, job.ID, vo.JobStatusApproved); err != nil {
				return vo.Outcome{Kind: vo.OutcomeRequeued}, err
			}
			job.Status = vo.JobStatusApproved
		}
		logger.Infof("job already has a live subprocess, backing off job_id=%d", job.ID)
		return vo.Outcome{Kind: vo.OutcomeRequeued, Detail: "duplicate in-flight process"}, nil
	}

	job.Seed = service.NormalizeSeed(job.Seed)
	prompt, negativePrompt := service.DecoratePrompts(
		job.Prompt, job.NegativePrompt,
		d.cfg.Pipeline.PromptSuffix, d.cfg.Pipeline.NegativePromptSuffix,
	)

	args, err := d.buildArgs(job, prompt, negativePrompt, attempt)
	if err != nil {
		return vo.Outcome{Kind: vo.OutcomeFailed}, err
	}
	if err := d.jobRepo.Update(ctx, job); err != nil {
		return vo.Outcome{Kind: vo.OutcomeFailed}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, d.cfg.Pipeline.SubprocessTimeout)
	defer cancel()

	started := time.Now()
	_, runErr := d.runner.Run(runCtx, job.ID, d.cfg.Pipeline.Vid2VidScriptPath, args)
	elapsed := int64(time.Since(started).Seconds())

	// Refresh before judging the exit: cancellation kills the subprocess,
	// which must not be reported as a backend failure.
	if current, getErr := d.jobRepo.Get(ctx, job.ID); getErr == nil {
		job.Status = current.Status
	}
	if job.Status == vo.JobStatusCancelled {
		return vo.Outcome{Kind: vo.OutcomeCancelled}, nil
	}

	if runErr != nil {
		job.MarkError(elapsed)
		if err := d.jobRepo.Update(ctx, job); err != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, err)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: runErr.Error()}, runErr
	}

	target := filepath.Join(d.cfg.Pipeline.ProcessedPath, job.Outfile)
	if _, statErr := os.Stat(target); statErr != nil {
		err := errno.NewBizError(errno.ErrArtifactMissing,
			fmt.Errorf("no output at %s after conversion", target))
		job.MarkError(elapsed)
		if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: err.Error()}, err
	}

	objectKey := "processed/" + job.Outfile
	outputURL := d.storage.PublicURL(objectKey)
	if _, upErr := d.storage.UploadProcessedFile(ctx, target, objectKey, ""); upErr != nil {
		job.MarkError(elapsed)
		if uerr := d.jobRepo.Update(ctx, job); uerr != nil {
			logger.Warnf("persist error state failed job_id=%d err=%v", job.ID, uerr)
		}
		return vo.Outcome{Kind: vo.OutcomeFailed, Detail: upErr.Error()}, upErr
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

	logger.Infof("conversion finished job_id=%d frames=%d elapsed=%ds speed=%d frames/s",
		job.ID, job.FrameCount, elapsed, framesPerSecond(job.FrameCount, elapsed))

	if attempt.IsPreview() {
		return vo.Outcome{Kind: vo.OutcomePreview, OutputURL: outputURL}, nil
	}
	return vo.Outcome{Kind: vo.OutcomeFinished, OutputURL: outputURL}, nil
}

// buildArgs assembles the backend command line and records the exact
// generation parameters plus their revision hash on the job.
func (d *Vid2VidDriver) buildArgs(job *entity.VideoJob, prompt, negativePrompt string, attempt port.Attempt) ([]string, error) {
	params := map[string]interface{}{
		"jobid":       job.ID,
		"input":       job.OriginalPath,
		"output":      filepath.Join(d.cfg.Pipeline.ProcessedPath, job.Outfile),
		"prompt":      prompt,
		"neg_prompt":  negativePrompt,
		"seed":        job.Seed,
		"model_id":    job.ModelID,
		"frame_count": job.FrameCount,
		"fps":         job.FPS,
		"width":       job.Width,
		"height":      job.Height,
		"cfg_scale":   job.CfgScale,
		"denoising":   job.Denoising,
	}
	if attempt.PreviewFrames > 0 {
		params["limit_frames_amount"] = attempt.PreviewFrames
	}
	if attempt.ExtendFromJobID != 0 {
		params["extend_from_job_id"] = attempt.ExtendFromJobID
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode generation parameters: %w", err)
	}
	job.GenerationParameters = string(encoded)
	job.Revision = fmt.Sprintf("%x", md5.Sum(encoded))

	args := []string{
		"--jobid=" + strconv.FormatUint(job.ID, 10),
		"--input=" + job.OriginalPath,
		"--output=" + filepath.Join(d.cfg.Pipeline.ProcessedPath, job.Outfile),
		"--prompt=" + prompt,
		"--neg_prompt=" + negativePrompt,
		"--seed=" + strconv.FormatInt(job.Seed, 10),
		"--frame_count=" + strconv.Itoa(job.FrameCount),
		"--fps=" + strconv.Itoa(job.FPS),
		"--width=" + strconv.Itoa(job.Width),
		"--height=" + strconv.Itoa(job.Height),
		"--cfg_scale=" + strconv.FormatFloat(job.CfgScale, 'f', -1, 64),
		"--denoising=" + strconv.FormatFloat(job.Denoising, 'f', -1, 64),
	}
	if attempt.PreviewFrames > 0 {
		args = append(args, "--limit_frames_amount="+strconv.Itoa(attempt.PreviewFrames))
	}
	if attempt.ExtendFromJobID != 0 {
		args = append(args, "--extend_from_job_id="+strconv.FormatUint(attempt.ExtendFromJobID, 10))
	}
	return args, nil
}

func framesPerSecond(frames int, elapsed int64) int64 {
	if elapsed <= 0 {
		return int64(frames)
	}
	return int64(frames) / elapsed
}
