package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	httpadapter "videogen-service/ddd/adapter/http"
	appsvc "videogen-service/ddd/application/app"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/registry"
	"videogen-service/pkg/repository"
	"videogen-service/pkg/task"

	_ "videogen-service/ddd/adapter/component"
	_ "videogen-service/ddd/infrastructure/worker"
	_ "videogen-service/internal/resource"
)

// Run boots the full service: config, logging, resources, components, the
// HTTP API and the background workers, then blocks until a signal arrives.
func Run() {
	fmt.Println("[STARTUP] Starting videogen service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Videogen service starting version=%s", "1.0.0")

	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resources initialized")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize database error=%v", err))
	}
	defer db.Close()

	videoJobApp := appsvc.DefaultVideoJobApp()

	deps := &manager.Dependencies{
		DB:              db.Self,
		Config:          cfg,
		VideoJobService: videoJobApp,
	}
	manager.MustInitComponents(deps)
	logger.Infof("Components initialized")

	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()

	router := httpadapter.NewRouter(videoJobApp)
	workerDiscovery := setupWorkerDiscovery(cfg, router)
	if workerDiscovery != nil {
		defer workerDiscovery.Close()
	}
	router.SetupMiddleware(engine)
	router.SetupRoutes(engine)
	manager.RegisterAllRoutes(engine)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started address=%s", addr)

	serviceRegistry := registerService(cfg, addr)
	if serviceRegistry != nil {
		defer func() {
			if err := serviceRegistry.Deregister(); err != nil {
				logger.Warnf("Service deregister failed error=%v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down...")

	task.StopAll()
	manager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")
	if logService != nil {
		logService.Close()
	}
}

// setupWorkerDiscovery watches the render worker registrations in etcd and
// exposes them through the API when the registry is enabled.
func setupWorkerDiscovery(cfg *config.Config, router *httpadapter.Router) *registry.ServiceDiscovery {
	if !cfg.ServiceRegistry.Enabled || len(cfg.ServiceRegistry.Endpoints) == 0 {
		return nil
	}

	discovery, err := registry.NewServiceDiscovery(registry.RegistryConfig{
		Endpoints:   cfg.ServiceRegistry.Endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		logger.Warnf("Worker discovery unavailable error=%v", err)
		return nil
	}

	workerServiceName := cfg.ServiceRegistry.ServiceName + "-worker"
	discovery.WatchService(workerServiceName)
	router.EnableWorkerDiscovery(discovery, workerServiceName)
	logger.Infof("Worker discovery enabled service=%s", workerServiceName)
	return discovery
}

// registerService announces this instance in etcd when enabled.
func registerService(cfg *config.Config, addr string) *registry.ServiceRegistry {
	if !cfg.ServiceRegistry.Enabled || len(cfg.ServiceRegistry.Endpoints) == 0 {
		return nil
	}

	serviceRegistry, err := registry.NewServiceRegistry(
		registry.RegistryConfig{
			Endpoints:   cfg.ServiceRegistry.Endpoints,
			DialTimeout: 5 * time.Second,
		},
		registry.ServiceConfig{
			ServiceName:     cfg.ServiceRegistry.ServiceName,
			ServiceID:       cfg.ServiceRegistry.ServiceID,
			TTL:             cfg.ServiceRegistry.TTL,
			RefreshInterval: cfg.ServiceRegistry.RefreshInterval,
		},
		registerAddr(cfg, addr),
	)
	if err != nil {
		logger.Warnf("Service registry unavailable error=%v", err)
		return nil
	}
	if err := serviceRegistry.Register(); err != nil {
		logger.Warnf("Service register failed error=%v", err)
		return nil
	}
	logger.Infof("Service registered name=%s id=%s", cfg.ServiceRegistry.ServiceName, cfg.ServiceRegistry.ServiceID)
	return serviceRegistry
}

func registerAddr(cfg *config.Config, addr string) string {
	if cfg.ServiceRegistry.RegisterHost != "" {
		return fmt.Sprintf("%s:%d", cfg.ServiceRegistry.RegisterHost, cfg.Server.Port)
	}
	return addr
}

// resolveConfigPath picks the config file, honoring CONFIG_PATH and
// CONFIG_ENV overrides.
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
