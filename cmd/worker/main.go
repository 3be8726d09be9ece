package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/observability"
	"videogen-service/pkg/registry"
	"videogen-service/pkg/repository"
	"videogen-service/pkg/task"

	_ "videogen-service/ddd/infrastructure/worker"
	_ "videogen-service/internal/resource"
)

// Worker-only entrypoint: runs the job workers and background tasks
// without the HTTP API. Useful for scaling processing independently.
func main() {
	observability.StartProfiling("videogen-worker")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Videogen worker starting")

	manager.MustInitResources()
	defer manager.CloseResources()

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize database error=%v", err))
	}
	defer db.Close()

	deps := &manager.Dependencies{
		DB:     db.Self,
		Config: cfg,
	}
	manager.MustInitComponents(deps)

	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Worker started")

	serviceRegistry := registerWorker(cfg)
	if serviceRegistry != nil {
		defer func() {
			if err := serviceRegistry.Deregister(); err != nil {
				logger.Warnf("Worker deregister failed error=%v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down...")
	task.StopAll()
	manager.Shutdown()
	logger.Infof("Worker exited safely")
	if logService != nil {
		logService.Close()
	}
}

// registerWorker announces this worker instance in etcd when enabled, so the
// API tier can list the workers currently alive.
func registerWorker(cfg *config.Config) *registry.ServiceRegistry {
	if !cfg.ServiceRegistry.Enabled || len(cfg.ServiceRegistry.Endpoints) == 0 {
		return nil
	}

	addr, err := os.Hostname()
	if err != nil || addr == "" {
		addr = cfg.Worker.WorkerID
	}

	serviceRegistry, err := registry.NewServiceRegistry(
		registry.RegistryConfig{
			Endpoints:   cfg.ServiceRegistry.Endpoints,
			DialTimeout: 5 * time.Second,
		},
		registry.ServiceConfig{
			ServiceName:     cfg.ServiceRegistry.ServiceName + "-worker",
			ServiceID:       cfg.Worker.WorkerID,
			TTL:             cfg.ServiceRegistry.TTL,
			RefreshInterval: cfg.ServiceRegistry.RefreshInterval,
		},
		addr,
	)
	if err != nil {
		logger.Warnf("Service registry unavailable error=%v", err)
		return nil
	}
	if err := serviceRegistry.Register(); err != nil {
		logger.Warnf("Worker registration failed error=%v", err)
		return nil
	}
	return serviceRegistry
}

func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
