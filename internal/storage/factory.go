// factory.go implements the storage backend registry and factory, mapping backend type
// strings (local, azure, aws, gcs) to constructor functions and dispatching New calls.
package storage

import (
	"fmt"

	"github.com/photovault/photovault/internal/config"
)

// FactoryFunc constructs a storage backend from application configuration.
type FactoryFunc func(*config.Config) (Storage, error)

var factories = make(map[string]FactoryFunc)

// Register registers a storage backend factory under the given backend name.
func Register(name string, factory FactoryFunc) {
	factories[name] = factory
}

// New creates the storage backend selected by cfg.Storage.Backend.
func New(cfg *config.Config) (Storage, error) {
	return newBackend(cfg.Storage.Backend, cfg)
}

func newBackend(name string, cfg *config.Config) (Storage, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %s (must be 'local', 'azure', 'aws', or 'gcs')", name)
	}

	return factory(cfg)
}
