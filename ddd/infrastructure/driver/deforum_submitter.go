package driver

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"

	"videogen-service/ddd/domain/entity"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// Submitter hands one job to the animation backend and returns the remote
// batch handle to poll.
type Submitter interface {
	Submit(ctx context.Context, job *entity.VideoJob, prompt, negativePrompt string) (string, error)
}

// submissionOutput is what the processor script prints on a successful
// submission.
type submissionOutput struct {
	JobIDs []string `json:"job_ids"`
}

// processSubmitter submits via the local processor script, which queues the
// batch on the backend and prints the assigned job ids as JSON.
type processSubmitter struct {
	cfg    *config.Config
	runner CommandRunner
}

func NewProcessSubmitter(cfg *config.Config, runner CommandRunner) Submitter {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &processSubmitter{cfg: cfg, runner: runner}
}

func (s *processSubmitter) Submit(ctx context.Context, job *entity.VideoJob, prompt, negativePrompt string) (string, error) {
	settings := map[string]interface{}{
		"prompts": map[string]string{
			"0": fmt.Sprintf("%s --neg %s", prompt, negativePrompt),
		},
		"seed":       job.Seed,
		"max_frames": job.FrameCount,
		"W":          job.Width,
		"H":          job.Height,
	}
	encodedSettings, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}

	params := map[string]interface{}{
		"init_img":           job.OriginalPath,
		"json_settings_file": s.cfg.Pipeline.SettingsTemplatePath,
		"json_settings":      string(encodedSettings),
	}
	encodedParams, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode generation parameters: %w", err)
	}
	job.GenerationParameters = string(encodedParams)
	job.Revision = fmt.Sprintf("%x", md5.Sum(encodedParams))

	args := []string{
		"--jobid=" + fmt.Sprintf("%d", job.ID),
		"--init_img=" + job.OriginalPath,
		"--json_settings_file=" + s.cfg.Pipeline.SettingsTemplatePath,
		"--json_settings=" + string(encodedSettings),
		"--start",
	}

	out, err := s.runner.Run(ctx, job.ID, s.cfg.Pipeline.DeforumProcessorPath, args)
	if err != nil {
		return "", err
	}

	var decoded submissionOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		return "", fmt.Errorf("parse submission output: %w", err)
	}
	if len(decoded.JobIDs) == 0 {
		return "", fmt.Errorf("submission returned no job ids")
	}

	logger.Infof("animation batch submitted job_id=%d handle=%s", job.ID, decoded.JobIDs[0])
	return decoded.JobIDs[0], nil
}
