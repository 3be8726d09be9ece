package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/queue"
	"videogen-service/pkg/config"
)

type stubJobRepo struct {
	mu   sync.Mutex
	jobs map[uint64]*entity.VideoJob
}

func newStubJobRepo(jobs ...*entity.VideoJob) *stubJobRepo {
	r := &stubJobRepo{jobs: map[uint64]*entity.VideoJob{}}
	for _, job := range jobs {
		r.jobs[job.ID] = job
	}
	return r
}

func (r *stubJobRepo) Create(ctx context.Context, job *entity.VideoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *stubJobRepo) Get(ctx context.Context, id uint64) (*entity.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id], nil
}

func (r *stubJobRepo) Update(ctx context.Context, job *entity.VideoJob) error {
	return r.Create(ctx, job)
}

func (r *stubJobRepo) UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id].Status = status
	return nil
}

func (r *stubJobRepo) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	return nil
}

func (r *stubJobRepo) CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	return 0, nil
}

func (r *stubJobRepo) CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error) {
	return 0, nil
}

func (r *stubJobRepo) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubProcs struct {
	killed []uint64
}

func (p *stubProcs) IsRunning(jobID uint64) bool { return false }
func (p *stubProcs) Kill(jobID uint64) error {
	p.killed = append(p.killed, jobID)
	return nil
}

func appConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.Lanes.High = "high"
	cfg.Pipeline.Lanes.Medium = "medium"
	cfg.Pipeline.Lanes.Low = "low"
	return cfg
}

func newTestApp(repo *stubJobRepo, procs *stubProcs) (VideoJobApp, *queue.LaneQueue) {
	lq := queue.NewLaneQueue(10, time.Hour, [3]string{"high", "medium", "low"})
	return NewVideoJobAppWith(repo, lq, procs, appConfig()), lq
}

func uploadedJob(id uint64) *entity.VideoJob {
	return &entity.VideoJob{
		ID:           id,
		UserID:       100,
		Status:       vo.JobStatusPending,
		Filename:     "input.mp4",
		OriginalPath: "/uploads/input.mp4",
		Width:        512,
		Height:       512,
	}
}

func TestSubmitVid2Vid(t *testing.T) {
	repo := newStubJobRepo(uploadedJob(1))
	app, lq := newTestApp(repo, &stubProcs{})

	resp, err := app.SubmitVid2Vid(context.Background(), &cqe.SubmitVid2VidReq{
		VideoID:    1,
		ModelID:    2,
		Prompt:     "a castle",
		CfgScale:   7,
		Denoising:  0.5,
		FrameCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, 5, resp.Progress)
	assert.Equal(t, int64(3), resp.JobTime)
	assert.Equal(t, int64(15), resp.EstimatedTimeLeft)
	assert.Greater(t, resp.Seed, int64(0))

	job := repo.jobs[1]
	assert.Equal(t, vo.GeneratorVid2Vid, job.Generator)
	assert.NotNil(t, job.QueuedAt)
	assert.Equal(t, 1, lq.Size(), "a preview attempt was queued")
}

func TestSubmitDeforumDerivesFrameCount(t *testing.T) {
	repo := newStubJobRepo(uploadedJob(1))
	app, _ := newTestApp(repo, &stubProcs{})

	_, err := app.SubmitDeforum(context.Background(), &cqe.SubmitDeforumReq{
		VideoID: 1,
		ModelID: 2,
		Prompt:  "a whale",
		Preset:  "default",
		Length:  4,
	})

	require.NoError(t, err)
	job := repo.jobs[1]
	assert.Equal(t, vo.GeneratorDeforum, job.Generator)
	assert.Equal(t, 24, job.FPS)
	assert.Equal(t, 96, job.FrameCount)
	assert.Equal(t, int64(576), job.EstimatedTimeLeft)
}

func TestFinalizeQueuesLowLane(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusPreview
	job.Generator = vo.GeneratorVid2Vid
	job.FrameCount = 4
	repo := newStubJobRepo(job)
	app, lq := newTestApp(repo, &stubProcs{})

	resp, err := app.Finalize(context.Background(), &cqe.FinalizeReq{VideoID: 1})

	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, 5, resp.Progress)
	assert.Equal(t, 1, lq.Size())
}

func TestFinalizeDeforumAmendsParameters(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusPreview
	job.Generator = vo.GeneratorDeforum
	job.Length = 4
	repo := newStubJobRepo(job)
	app, _ := newTestApp(repo, &stubProcs{})

	_, err := app.FinalizeDeforum(context.Background(), &cqe.FinalizeDeforumReq{
		VideoID: 1,
		Prompt:  "a bigger whale",
		Length:  6,
	})

	require.NoError(t, err)
	assert.Equal(t, "a bigger whale", job.Prompt)
	assert.Equal(t, float64(6), job.Length)
	assert.Equal(t, 144, job.FrameCount)
}

func TestCancelKillsProcessAndResets(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusProcessing
	repo := newStubJobRepo(job)
	procs := &stubProcs{}
	app, _ := newTestApp(repo, procs)

	resp, err := app.Cancel(context.Background(), &cqe.CancelJobReq{VideoID: 1})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, []uint64{1}, procs.killed)
	assert.Equal(t, vo.JobStatusCancelled, job.Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusProcessing
	repo := newStubJobRepo(job)
	app, _ := newTestApp(repo, &stubProcs{})
	ctx := context.Background()

	first, err := app.Cancel(ctx, &cqe.CancelJobReq{VideoID: 1})
	require.NoError(t, err)

	second, err := app.Cancel(ctx, &cqe.CancelJobReq{VideoID: 1})
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, vo.JobStatusCancelled, job.Status)
}

func TestCancelLeavesFinishedJobAlone(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusFinished
	job.Progress = 100
	repo := newStubJobRepo(job)
	app, _ := newTestApp(repo, &stubProcs{})

	resp, err := app.Cancel(context.Background(), &cqe.CancelJobReq{VideoID: 1})

	require.NoError(t, err)
	assert.Equal(t, "finished", resp.Status)
	assert.Equal(t, 100, job.Progress)
}

func TestStatusIncludesQueuePositionWhenApproved(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusApproved
	job.FrameCount = 4
	repo := newStubJobRepo(job)
	app, _ := newTestApp(repo, &stubProcs{})

	status, err := app.Status(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, status.Queue)
	assert.Equal(t, "medium", status.Queue.Lane)
}

func TestStatusOmitsQueueWhenProcessing(t *testing.T) {
	job := uploadedJob(1)
	job.Status = vo.JobStatusProcessing
	repo := newStubJobRepo(job)
	app, _ := newTestApp(repo, &stubProcs{})

	status, err := app.Status(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, status.Queue)
	assert.Equal(t, "processing", status.Status)
}

func TestSubmitDuplicateWhileQueued(t *testing.T) {
	repo := newStubJobRepo(uploadedJob(1))
	app, _ := newTestApp(repo, &stubProcs{})
	ctx := context.Background()

	req := &cqe.SubmitVid2VidReq{
		VideoID: 1, ModelID: 2, Prompt: "a castle", CfgScale: 7, Denoising: 0.5, FrameCount: 1,
	}
	_, err := app.SubmitVid2Vid(ctx, req)
	require.NoError(t, err)

	_, err = app.SubmitVid2Vid(ctx, req)
	assert.Error(t, err, "identical submission is suppressed while queued")
}
