package http

import (
	"github.com/gin-gonic/gin"

	"videogen-service/ddd/application/app"
	"videogen-service/pkg/middleware"
	"videogen-service/pkg/restapi"
)

// WorkerDiscovery resolves the render worker instances registered in etcd.
type WorkerDiscovery interface {
	GetService(serviceName string) []string
	DiscoverService(serviceName string) ([]string, error)
}

// Router mounts the job pipeline API.
type Router struct {
	videoJobApp app.VideoJobApp

	workerDiscovery   WorkerDiscovery
	workerServiceName string
}

func NewRouter(videoJobApp app.VideoJobApp) *Router {
	return &Router{videoJobApp: videoJobApp}
}

// EnableWorkerDiscovery mounts the worker listing endpoint backed by the
// given discovery client.
func (r *Router) EnableWorkerDiscovery(discovery WorkerDiscovery, serviceName string) {
	r.workerDiscovery = discovery
	r.workerServiceName = serviceName
}

// SetupRoutes mounts all endpoints on the engine.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	controller := NewVideoJobController(r.videoJobApp)

	v1 := engine.Group("/api/v1")
	{
		jobs := v1.Group("/videojobs")
		{
			jobs.POST("/submit", controller.Submit)
			jobs.POST("/submit-deforum", controller.SubmitDeforum)
			jobs.POST("/finalize", controller.Finalize)
			jobs.POST("/finalize-deforum", controller.FinalizeDeforum)
			jobs.POST("/cancel", controller.Cancel)
			jobs.GET("/:id/status", controller.Status)
		}

		if r.workerDiscovery != nil {
			v1.GET("/workers", r.listWorkers)
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "videogen-service",
			"version": "1.0.0",
		})
	})
}

// listWorkers reports the worker instances currently registered in etcd.
func (r *Router) listWorkers(c *gin.Context) {
	instances := r.workerDiscovery.GetService(r.workerServiceName)
	if len(instances) == 0 {
		if fresh, err := r.workerDiscovery.DiscoverService(r.workerServiceName); err == nil {
			instances = fresh
		}
	}
	if instances == nil {
		instances = []string{}
	}
	restapi.Success(c, gin.H{"service": r.workerServiceName, "instances": instances})
}

// SetupMiddleware installs the shared middleware stack.
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(middleware.RequestContextMiddleware())
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
}
