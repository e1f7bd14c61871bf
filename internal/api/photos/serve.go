// serve.go handles raw photo serving from the storage backend.
package photos

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/telemetry"
	"github.com/photovault/photovault/internal/validation"
)

// ServeHandler handles raw photo requests
// Implements: GET /uploads/:container/:name
// Local storage streams the bytes directly. Cloud backends redirect to the
// backend's own URL so the blob service handles the transfer.
func ServeHandler(handle *storage.Handle, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("container") != cfg.Storage.Container {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Photo not found",
			})
			return
		}

		name, err := validation.ValidatePhotoFilename(c.Param("name"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Photo not found",
			})
			return
		}

		if handle.Kind != storage.BackendLocal {
			telemetry.PhotoDownloadsTotal.WithLabelValues(handle.Kind).Inc()
			c.Redirect(http.StatusFound, handle.GetURL(name))
			return
		}

		reader, err := handle.Download(c.Request.Context(), name)
		if err != nil {
			respondStorageError(c, handle.Kind, "download", err)
			return
		}
		defer reader.Close()

		telemetry.PhotoDownloadsTotal.WithLabelValues(handle.Kind).Inc()

		// Size is unknown without a second stat, so let the transfer be chunked.
		c.DataFromReader(http.StatusOK, -1, storage.ContentTypeFor(name), reader, nil)
	}
}
