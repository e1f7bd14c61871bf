// list.go implements the photo listing endpoint.
package photos

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photovault/photovault/internal/storage"
)

// ListHandler handles photo listing requests
// Implements: GET /api/v1/photos
// Returns every object in the configured container. Local storage orders the
// result newest-first; cloud backends return lexical key order.
func ListHandler(handle *storage.Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		objects, err := handle.List(c.Request.Context())
		if err != nil {
			respondStorageError(c, handle.Kind, "list", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"photos": objects,
			"count":  len(objects),
		})
	}
}
