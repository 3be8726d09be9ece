package manager

import (
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// Resource is an external connection with an explicit open/close lifecycle
// (database, redis, kafka, object storage).
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin creates a named resource during startup.
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component is a runnable unit assembled after resources are available
// (workers, consumers).
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

// ComponentPlugin creates a named component from the dependency container.
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Dependencies is the injection container handed to component plugins.
type Dependencies struct {
	DB              *gorm.DB
	Config          *config.Config
	VideoJobService interface{}
}

type registry struct {
	mu               sync.Mutex
	resourcePlugins  []ResourcePlugin
	resources        []Resource
	componentPlugins []ComponentPlugin
	components       []Component
	routeFns         []func(*gin.Engine)
}

var defaultRegistry = &registry{}

// RegisterResourcePlugin registers a resource plugin; called from init().
func RegisterResourcePlugin(p ResourcePlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.resourcePlugins = append(defaultRegistry.resourcePlugins, p)
}

// RegisterComponentPlugin registers a component plugin; called from init().
func RegisterComponentPlugin(p ComponentPlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.componentPlugins = append(defaultRegistry.componentPlugins, p)
}

// RegisterRoutes registers a route-mounting function executed by RegisterAllRoutes.
func RegisterRoutes(fn func(*gin.Engine)) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.routeFns = append(defaultRegistry.routeFns, fn)
}

// MustInitResources opens every registered resource, panicking on failure.
func MustInitResources() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for _, p := range defaultRegistry.resourcePlugins {
		logger.Infof("Opening resource name=%s", p.Name())
		res := p.MustCreateResource()
		res.MustOpen()
		defaultRegistry.resources = append(defaultRegistry.resources, res)
	}
}

// CloseResources closes resources in reverse open order.
func CloseResources() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.resources) - 1; i >= 0; i-- {
		defaultRegistry.resources[i].Close()
	}
	defaultRegistry.resources = nil
}

// MustInitComponents creates and starts every registered component.
func MustInitComponents(deps *Dependencies) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for _, p := range defaultRegistry.componentPlugins {
		logger.Infof("Starting component name=%s", p.Name())
		c := p.MustCreateComponent(deps)
		if err := c.Start(); err != nil {
			panic("failed to start component " + p.Name() + ": " + err.Error())
		}
		defaultRegistry.components = append(defaultRegistry.components, c)
	}
}

// RegisterAllRoutes mounts every registered route group on the engine.
func RegisterAllRoutes(engine *gin.Engine) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for _, fn := range defaultRegistry.routeFns {
		fn(engine)
	}
}

// Shutdown stops components in reverse start order.
func Shutdown() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.components) - 1; i >= 0; i-- {
		c := defaultRegistry.components[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Component stop error name=%s error=%v", c.GetName(), err)
		}
	}
	defaultRegistry.components = nil
}
