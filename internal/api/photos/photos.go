// Package photos implements the photo management HTTP handlers: upload, listing,
// deletion, and raw file serving. All handlers operate against the storage handle
// chosen at boot, so a single deployment talks to exactly one backend for its
// whole lifetime.
package photos

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/telemetry"
)

// respondStorageError maps a storage failure to an HTTP response and records it.
// Not-found is a client condition, not a backend failure, so it skips the error
// counter.
func respondStorageError(c *gin.Context, backend, operation string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Photo not found",
		})
		return
	}

	telemetry.StorageOperationErrorsTotal.WithLabelValues(backend, operation).Inc()

	if errors.Is(err, storage.ErrBackendUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Storage backend unavailable",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Storage operation failed",
	})
}
