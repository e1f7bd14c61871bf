// upload.go implements the photo upload endpoint.
package photos

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/telemetry"
	"github.com/photovault/photovault/internal/validation"
	"github.com/photovault/photovault/pkg/checksum"
)

// UploadHandler handles photo upload requests
// Implements: POST /api/v1/photos
// Accepts multipart form with a single "file" field. The stored name is the
// sanitized client filename, so re-uploading the same name overwrites.
func UploadHandler(handle *storage.Handle, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(cfg.Server.MaxUploadBytes()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to parse multipart form",
			})
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing or invalid file upload",
			})
			return
		}
		defer file.Close()

		if header.Size > cfg.Server.MaxUploadBytes() {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File exceeds maximum upload size of %d MB", cfg.Server.MaxUploadMB),
			})
			return
		}

		name, err := validation.ValidatePhotoFilename(header.Filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid filename: %v", err),
			})
			return
		}

		// Read into a buffer so the checksum and the upload see the same bytes.
		fileBuffer := &bytes.Buffer{}
		size, err := io.Copy(fileBuffer, io.LimitReader(file, cfg.Server.MaxUploadBytes()+1))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to read uploaded file",
			})
			return
		}
		if size > cfg.Server.MaxUploadBytes() {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File exceeds maximum upload size of %d MB", cfg.Server.MaxUploadMB),
			})
			return
		}

		sum, err := checksum.CalculateSHA256(bytes.NewReader(fileBuffer.Bytes()))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to checksum uploaded file",
			})
			return
		}

		url, err := handle.Upload(c.Request.Context(), name, bytes.NewReader(fileBuffer.Bytes()))
		if err != nil {
			respondStorageError(c, handle.Kind, "upload", err)
			return
		}

		telemetry.PhotoUploadsTotal.WithLabelValues(handle.Kind).Inc()

		c.JSON(http.StatusCreated, gin.H{
			"name":         name,
			"url":          url,
			"size_bytes":   size,
			"content_type": storage.ContentTypeFor(name),
			"checksum":     sum,
		})
	}
}
