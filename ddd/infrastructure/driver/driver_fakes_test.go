package driver

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/config"
)

// memoryJobRepo holds jobs in a map, cloning on Get like a real store would.
type memoryJobRepo struct {
	mu   sync.Mutex
	jobs map[uint64]*entity.VideoJob
}

func newMemoryJobRepo(jobs ...*entity.VideoJob) *memoryJobRepo {
	r := &memoryJobRepo{jobs: map[uint64]*entity.VideoJob{}}
	for _, job := range jobs {
		clone := *job
		r.jobs[job.ID] = &clone
	}
	return r
}

func (r *memoryJobRepo) Create(ctx context.Context, job *entity.VideoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *memoryJobRepo) Get(ctx context.Context, id uint64) (*entity.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *r.jobs[id]
	return &clone, nil
}

func (r *memoryJobRepo) Update(ctx context.Context, job *entity.VideoJob) error {
	return r.Create(ctx, job)
}

func (r *memoryJobRepo) UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id].Status = status
	return nil
}

func (r *memoryJobRepo) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	job.Progress = progress
	job.EstimatedTimeLeft = estimatedTimeLeft
	job.JobTime = jobTime
	return nil
}

func (r *memoryJobRepo) CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, job := range r.jobs {
		if job.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memoryJobRepo) CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, job := range r.jobs {
		if job.Status == status && job.Generator == generator {
			count++
		}
	}
	return count, nil
}

func (r *memoryJobRepo) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryJobRepo) stored(id uint64) *entity.VideoJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

// fakeStorage records uploads instead of touching object storage.
type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	failErr error
}

func (s *fakeStorage) UploadProcessedFile(ctx context.Context, localPath, objectKey, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return "", s.failErr
	}
	s.uploads = append(s.uploads, objectKey)
	return objectKey, nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

// fakeProcs is a scriptable ProcessController.
type fakeProcs struct {
	running map[uint64]bool
	killed  []uint64
}

func (p *fakeProcs) IsRunning(jobID uint64) bool { return p.running[jobID] }
func (p *fakeProcs) Kill(jobID uint64) error {
	p.killed = append(p.killed, jobID)
	delete(p.running, jobID)
	return nil
}

// fakeRunner returns a canned result instead of spawning a subprocess.
type fakeRunner struct {
	output string
	err    error
	calls  int
	name   string
	args   []string
}

func (r *fakeRunner) Run(ctx context.Context, jobID uint64, name string, args []string) (string, error) {
	r.calls++
	r.name = name
	r.args = args
	return r.output, r.err
}

// fakeSubmitter returns a fixed batch handle.
type fakeSubmitter struct {
	handle string
	err    error
}

func (s *fakeSubmitter) Submit(ctx context.Context, job *entity.VideoJob, prompt, negativePrompt string) (string, error) {
	return s.handle, s.err
}

// scriptedRemote returns each response in order, repeating the last one, and
// records deletions.
type scriptedRemote struct {
	mu        sync.Mutex
	responses []*vo.RemoteJob
	errs      []error
	calls     int
	deleted   []string
	onPoll    func(call int)
}

func (r *scriptedRemote) GetJob(ctx context.Context, handle string) (*vo.RemoteJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.calls
	r.calls++
	if r.onPoll != nil {
		r.onPoll(idx)
	}
	if idx < len(r.errs) && r.errs[idx] != nil {
		return nil, r.errs[idx]
	}
	if idx >= len(r.responses) {
		idx = len(r.responses) - 1
	}
	return r.responses[idx], nil
}

func (r *scriptedRemote) DeleteJob(ctx context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, handle)
	return nil
}

// progressRecorder captures every progress sample a driver emits.
type progressRecorder struct {
	mu      sync.Mutex
	samples []int
	etas    []int64
}

func (s *progressRecorder) SaveProgress(ctx context.Context, job *entity.VideoJob, progress int, estimatedTimeLeft, jobTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.UpdateProgress(jobTime, progress, estimatedTimeLeft)
	s.samples = append(s.samples, progress)
	s.etas = append(s.etas, estimatedTimeLeft)
	return nil
}

func testConfig(processedPath string) *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.ProcessedPath = processedPath
	cfg.Pipeline.PreviewPath = filepath.Join(processedPath, "preview")
	cfg.Pipeline.PollInterval = 5 * time.Millisecond
	cfg.Pipeline.SubprocessTimeout = time.Minute
	cfg.Pipeline.Vid2VidScriptPath = "/opt/videogen/bin/vid2vid.sh"
	cfg.Pipeline.DeforumProcessorPath = "/opt/videogen/bin/deforum-submit"
	return cfg
}
