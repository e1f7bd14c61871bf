// selector.go implements the boot-time backend selection and fallback logic.
// Exactly one preferred backend is attempted; when a cloud backend fails to
// construct or to create its container, the chain falls through to local
// storage as a hard-coded final fallback. The resulting Handle is immutable
// for the remainder of the process lifetime.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/telemetry"
)

// BackendLocal is the backend name used as the final fallback.
const BackendLocal = "local"

// Handle is the process-wide storage handle chosen at boot. It is shared
// read-only by all request handlers; the backend choice is never changed
// while the process runs.
type Handle struct {
	Storage

	// Kind is the name of the active backend ("local", "azure", "aws", "gcs").
	Kind string
}

// Select constructs the configured backend and verifies it by creating its
// container. Any failure on a non-local backend is logged and converted into
// a fallback to local storage; a failure of local storage itself is fatal.
func Select(ctx context.Context, cfg *config.Config) (*Handle, error) {
	kind := cfg.Storage.Backend

	if kind != BackendLocal {
		backend, err := newBackend(kind, cfg)
		if err == nil {
			err = backend.CreateContainer(ctx)
		}
		if err == nil {
			slog.Info("storage backend ready", "backend", kind, "container", cfg.Storage.Container)
			return &Handle{Storage: backend, Kind: kind}, nil
		}

		// The failure reason is never silently dropped.
		slog.Warn("storage backend initialization failed, falling back to local storage",
			"backend", kind, "error", err)
		telemetry.StorageFallbacksTotal.WithLabelValues(kind).Inc()
		kind = BackendLocal
	}

	backend, err := newBackend(BackendLocal, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	if err := backend.CreateContainer(ctx); err != nil {
		return nil, fmt.Errorf("failed to create local storage container: %w", err)
	}

	slog.Info("storage backend ready", "backend", kind, "container", cfg.Storage.Container)
	return &Handle{Storage: backend, Kind: kind}, nil
}
