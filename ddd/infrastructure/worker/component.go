package worker

import (
	"context"

	"videogen-service/ddd/domain/port"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/infrastructure/database/persistence"
	"videogen-service/ddd/infrastructure/deforum"
	"videogen-service/ddd/infrastructure/driver"
	"videogen-service/ddd/infrastructure/gate"
	"videogen-service/ddd/infrastructure/process"
	"videogen-service/ddd/infrastructure/progress"
	"videogen-service/ddd/infrastructure/queue"
	"videogen-service/ddd/infrastructure/storage"
	"videogen-service/internal/resource"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/task"
)

// VideoJobWorkerComponentPlugin assembles and starts the job workers.
type VideoJobWorkerComponentPlugin struct{}

func (p *VideoJobWorkerComponentPlugin) Name() string {
	return "videoJobWorkerComponent"
}

func (p *VideoJobWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if !cfg.Worker.Enabled {
		logger.Infof("video job worker disabled by configuration")
		return &videoJobWorkerComponent{name: "videoJobWorker"}
	}

	jobRepo := persistence.NewVideoJobRepository()
	laneQueue := queue.DefaultLaneQueue()
	registry := process.DefaultRegistry()

	lockStore := gate.NewRedisLockStore(resource.DefaultRedisResource().Client())
	concurrencyGate := gate.NewConcurrencyGate(
		jobRepo, lockStore,
		int64(cfg.Pipeline.MaxConcurrentJobs),
		int(cfg.Pipeline.LockTTL.Seconds()),
	)
	reaper := service.NewStaleJobReaper(jobRepo, cfg.Pipeline.StaleThreshold)

	storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource(), cfg.Public.StorageBase)
	runner := driver.NewExecCommandRunner(registry)
	sink := progress.NewDBSink(jobRepo)

	drivers := []port.Driver{
		driver.NewVid2VidDriver(cfg, jobRepo, storageGateway, registry, runner),
		driver.NewDeforumDriver(
			cfg, jobRepo, storageGateway, registry,
			driver.NewProcessSubmitter(cfg, runner),
			deforum.NewClient(cfg.Pipeline.DeforumAPIBase),
			sink,
		),
	}

	workerCount := 1
	workerID := "videogen-worker"
	if cfg.Worker.WorkerCount > 0 {
		workerCount = cfg.Worker.WorkerCount
	}
	if cfg.Worker.WorkerID != "" {
		workerID = cfg.Worker.WorkerID
	}

	return &videoJobWorkerComponent{
		name:   "videoJobWorker",
		worker: NewVideoJobWorker(workerID, laneQueue, jobRepo, concurrencyGate, reaper, drivers, cfg, workerCount),
	}
}

type videoJobWorkerComponent struct {
	name   string
	worker VideoJobWorker
	cancel context.CancelFunc
}

func (c *videoJobWorkerComponent) Start() error {
	if c.worker == nil {
		return nil
	}
	task.Register(&backgroundTaskAdapter{name: c.name, startFunc: c.worker.Start, stopFunc: c.worker.Stop})
	logger.Infof("video job worker component registered background task name=%s", c.name)
	return nil
}

func (c *videoJobWorkerComponent) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	queue.CloseDefaultLaneQueue()
	logger.Infof("video job worker component stopped name=%s", c.name)
	return nil
}

func (c *videoJobWorkerComponent) GetName() string {
	return c.name
}

// backgroundTaskAdapter adapts Start/Stop functions to the BackgroundTask interface.
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }
