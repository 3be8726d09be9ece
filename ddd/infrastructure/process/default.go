package process

import "sync"

var (
	registryOnce    sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide subprocess registry.
func DefaultRegistry() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
