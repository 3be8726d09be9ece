package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/application/dto"
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/persistence"
	"videogen-service/ddd/infrastructure/process"
	"videogen-service/ddd/infrastructure/queue"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

var (
	singleVideoJobApp VideoJobApp
	onceVideoJobApp   sync.Once
)

// VideoJobApp is the application service behind the job endpoints.
type VideoJobApp interface {
	// SubmitVid2Vid accepts generation parameters for an uploaded video and
	// queues a preview attempt.
	SubmitVid2Vid(ctx context.Context, req *cqe.SubmitVid2VidReq) (*dto.VideoJobDto, error)
	// SubmitDeforum accepts animation parameters for an uploaded init image
	// and queues a preview attempt.
	SubmitDeforum(ctx context.Context, req *cqe.SubmitDeforumReq) (*dto.VideoJobDto, error)
	// Finalize queues the full-quality render on the low lane.
	Finalize(ctx context.Context, req *cqe.FinalizeReq) (*dto.FinalizeDto, error)
	// FinalizeDeforum amends animation parameters and queues the full render.
	FinalizeDeforum(ctx context.Context, req *cqe.FinalizeDeforumReq) (*dto.FinalizeDto, error)
	// Cancel cancels a job; safe to call in any state, idempotent.
	Cancel(ctx context.Context, req *cqe.CancelJobReq) (*dto.FinalizeDto, error)
	// Status reports the latest persisted state of a job.
	Status(ctx context.Context, id uint64) (*dto.JobStatusDto, error)
}

type videoJobAppImpl struct {
	jobRepo    repo.VideoJobRepository
	dispatcher *queue.Dispatcher
	laneQueue  *queue.LaneQueue
	procs      port.ProcessController
	cfg        *config.Config
}

func DefaultVideoJobApp() VideoJobApp {
	assert.NotCircular()
	onceVideoJobApp.Do(func() {
		laneQueue := queue.DefaultLaneQueue()
		singleVideoJobApp = NewVideoJobAppWith(
			persistence.NewVideoJobRepository(),
			laneQueue,
			process.DefaultRegistry(),
			config.GetGlobalConfig(),
		)
	})
	assert.NotNil(singleVideoJobApp)
	return singleVideoJobApp
}

func NewVideoJobAppWith(jobRepo repo.VideoJobRepository, laneQueue *queue.LaneQueue, procs port.ProcessController, cfg *config.Config) VideoJobApp {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &videoJobAppImpl{
		jobRepo:    jobRepo,
		dispatcher: queue.NewDispatcher(laneQueue),
		laneQueue:  laneQueue,
		procs:      procs,
		cfg:        cfg,
	}
}

func (a *videoJobAppImpl) SubmitVid2Vid(ctx context.Context, req *cqe.SubmitVid2VidReq) (*dto.VideoJobDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := a.jobRepo.Get(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	job.Generator = vo.GeneratorVid2Vid
	job.ModelID = req.ModelID
	job.Prompt = req.Prompt
	job.NegativePrompt = req.NegativePrompt
	job.CfgScale = req.CfgScale
	job.Denoising = req.Denoising
	job.FrameCount = req.FrameCount
	job.Seed = service.NormalizeSeed(req.Seed)
	if req.Controlnet != nil {
		job.Controlnet = encodeControlnet(req.Controlnet)
	}

	a.prepareForDispatch(job)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if err := a.dispatcher.DispatchGenerate(ctx, job, req.FrameCount, 0); err != nil {
		return nil, err
	}
	logger.Infof("submitted vid2vid job job_id=%d frame_count=%d seed=%d", job.ID, job.FrameCount, job.Seed)
	return dto.NewVideoJobDto(job), nil
}

func (a *videoJobAppImpl) SubmitDeforum(ctx context.Context, req *cqe.SubmitDeforumReq) (*dto.VideoJobDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := a.jobRepo.Get(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	job.Generator = vo.GeneratorDeforum
	job.ModelID = req.ModelID
	job.Prompt = req.Prompt
	job.NegativePrompt = req.NegativePrompt
	job.Denoising = req.Denoising
	job.Seed = service.NormalizeSeed(req.Seed)
	job.FPS = 24
	job.Length = req.Length
	job.FrameCount = int(job.Length*float64(job.FPS) + 0.5)

	a.prepareForDispatch(job)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if err := a.dispatcher.DispatchGenerate(ctx, job, req.FrameCount, 0); err != nil {
		return nil, err
	}
	logger.Infof("submitted deforum job job_id=%d frame_count=%d seed=%d", job.ID, job.FrameCount, job.Seed)
	return dto.NewVideoJobDto(job), nil
}

func (a *videoJobAppImpl) Finalize(ctx context.Context, req *cqe.FinalizeReq) (*dto.FinalizeDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := a.jobRepo.Get(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	job.ResetProgress(vo.JobStatusApproved)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if err := a.dispatcher.DispatchFinalize(ctx, job); err != nil {
		return nil, err
	}
	logger.Infof("queued finalize job_id=%d", job.ID)
	return dto.NewFinalizeDto(job), nil
}

func (a *videoJobAppImpl) FinalizeDeforum(ctx context.Context, req *cqe.FinalizeDeforumReq) (*dto.FinalizeDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := a.jobRepo.Get(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	job.ResetProgress(vo.JobStatusApproved)
	job.FPS = 24
	job.Seed = service.NormalizeSeed(req.Seed)
	if req.ModelID != 0 {
		job.ModelID = req.ModelID
	}
	if req.Prompt != "" {
		job.Prompt = req.Prompt
	}
	if req.NegativePrompt != "" {
		job.NegativePrompt = req.NegativePrompt
	}
	if req.Length != 0 {
		job.Length = req.Length
	}
	job.FrameCount = int(job.Length*float64(job.FPS) + 0.5)
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if err := a.dispatcher.DispatchFinalize(ctx, job); err != nil {
		return nil, err
	}
	logger.Infof("queued deforum finalize job_id=%d frame_count=%d", job.ID, job.FrameCount)
	return dto.NewFinalizeDto(job), nil
}

func (a *videoJobAppImpl) Cancel(ctx context.Context, req *cqe.CancelJobReq) (*dto.FinalizeDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := a.jobRepo.Get(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	// Best effort: a missing or already-dead subprocess is fine.
	if kerr := a.procs.Kill(job.ID); kerr != nil {
		logger.Warnf("kill subprocess on cancel failed job_id=%d err=%v", job.ID, kerr)
	}

	if !job.IsTerminal() {
		job.ResetProgress(vo.JobStatusCancelled)
		if err := a.jobRepo.Update(ctx, job); err != nil {
			return nil, err
		}
		logger.Infof("job cancelled job_id=%d", job.ID)
	}
	return dto.NewFinalizeDto(job), nil
}

func (a *videoJobAppImpl) Status(ctx context.Context, id uint64) (*dto.JobStatusDto, error) {
	job, err := a.jobRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := dto.NewJobStatusDto(job)
	if job.Status == vo.JobStatusApproved {
		lane := queue.LaneFor(job.FrameCount, false)
		status.Queue = &dto.JobQueueDto{
			Lane:  a.laneName(lane),
			Depth: a.laneQueue.Size(),
		}
	}
	return status, nil
}

// prepareForDispatch applies the submission side effects shared by both
// generators: processing status with the progress baseline, a seeded
// job_time, the linear initial ETA and the queued timestamp.
func (a *videoJobAppImpl) prepareForDispatch(job *entity.VideoJob) {
	job.ResetProgress(vo.JobStatusProcessing)
	job.JobTime = 3
	job.EstimatedTimeLeft = int64(job.Generator.InitialETASeconds(job.FrameCount))
	now := time.Now()
	job.QueuedAt = &now
}

func (a *videoJobAppImpl) laneName(lane queue.Lane) string {
	switch lane {
	case queue.LaneHigh:
		return a.cfg.Pipeline.Lanes.High
	case queue.LaneLow:
		return a.cfg.Pipeline.Lanes.Low
	default:
		return a.cfg.Pipeline.Lanes.Medium
	}
}

func encodeControlnet(params map[string]interface{}) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		logger.Warnf("encode controlnet params failed err=%v", err)
		return ""
	}
	return string(encoded)
}
