// Package api wires together all HTTP routes for the PhotoVault server.
//
// Route grouping philosophy:
//   - The JSON API lives under /api/v1/ and covers upload, listing, and
//     deletion of photos.
//   - Raw photo bytes are served from /<local root>/:container/:name so that
//     the URLs produced by local storage resolve against this same server.
//     Cloud backends answer the same route with a redirect to the blob URL.
//
// The storage handle is chosen once at boot (see storage.Select) and shared by
// every handler; the router never reconfigures storage at runtime.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/photovault/photovault/internal/api/photos"
	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/middleware"
	"github.com/photovault/photovault/internal/storage"
)

// Version is the server version reported by /version. Overridden at build time
// with -ldflags "-X github.com/photovault/photovault/internal/api.Version=...".
var Version = "0.1.0"

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, handle *storage.Handle) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.DefaultSecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(handle))

	// API version
	router.GET("/version", versionHandler())

	// Photo management endpoints
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/photos", photos.UploadHandler(handle, cfg))
		apiV1.GET("/photos", photos.ListHandler(handle))
		apiV1.DELETE("/photos/:name", photos.DeleteHandler(handle))
	}

	// Raw photo serving. The first segment mirrors the local storage root so
	// that locally generated URLs (/<root>/<container>/<name>) route here.
	serveRoot := strings.Trim(cfg.Storage.Local.Root, "/")
	router.GET("/"+serveRoot+"/:container/:name", photos.ServeHandler(handle, cfg))

	return router
}

// healthCheckHandler returns the health status of the service
func healthCheckHandler(handle *storage.Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		backend := ""
		if handle != nil {
			backend = handle.Kind
		}
		c.JSON(http.StatusOK, gin.H{
			"status":             "healthy",
			"storage_configured": handle != nil,
			"storage_backend":    backend,
			"time":               time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID, _ := c.Get(middleware.RequestIDKey)
		// slog emits JSON or text according to the global handler configured in
		// telemetry.SetupLogger, so both logging formats share this call.
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowedMethods := strings.Join(cfg.Security.CORS.AllowedMethods, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
