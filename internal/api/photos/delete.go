// delete.go implements the photo deletion endpoint.
package photos

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/telemetry"
	"github.com/photovault/photovault/internal/validation"
)

// DeleteHandler handles photo deletion requests
// Implements: DELETE /api/v1/photos/:name
// Responds 200 with deleted:false when the object was already absent. S3
// deletes are unconditional, so against that backend deleted is always true.
func DeleteHandler(handle *storage.Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, err := validation.ValidatePhotoFilename(c.Param("name"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid filename: %v", err),
			})
			return
		}

		deleted, err := handle.Delete(c.Request.Context(), name)
		if err != nil {
			respondStorageError(c, handle.Kind, "delete", err)
			return
		}

		if deleted {
			telemetry.PhotoDeletesTotal.WithLabelValues(handle.Kind).Inc()
		}

		c.JSON(http.StatusOK, gin.H{
			"name":    name,
			"deleted": deleted,
		})
	}
}
