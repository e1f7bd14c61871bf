// Package telemetry provides application-level observability for PhotoVault.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<PV_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format (Content-Type: text/plain; version=0.0.4) and is intended to be scraped by
// a Prometheus server every 15–60 seconds.  It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Photo upload, download, and delete counters (labelled by storage backend)
//   - Storage operation error counters and boot-time fallback counters
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/photos/:name)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as photo filenames.
//
// # Usage
//
// Import the package for side effects so metrics are registered before the HTTP server
// starts listening, or use an exported var directly:
//
//	telemetry.PhotoUploadsTotal.WithLabelValues(backend).Inc()
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template (e.g. /api/v1/photos/:name),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - Requests by route:                 sum by (path) (rate(http_requests_total[5m]))
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
//
// Example PromQL queries:
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
//   - Average latency:                   rate(http_request_duration_seconds_sum[5m]) / rate(http_request_duration_seconds_count[5m])
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Photo lifecycle metrics — recorded by the photo API handlers.
//
// PhotoUploadsTotal is a CounterVec with label {backend} incremented once per
// successfully stored photo.  The backend label is the active storage kind
// ("local", "azure", "aws", or "gcs"), which makes it easy to see whether
// traffic is hitting the intended backend or a fallback.
//
// Example PromQL queries:
//   - Upload rate:          rate(photo_uploads_total[5m])
//   - Uploads by backend:   sum by (backend) (rate(photo_uploads_total[1h]))
//
// PhotoDownloadsTotal counts successful photo fetches (direct streams and
// redirects to cloud URLs alike), and PhotoDeletesTotal counts deletions that
// actually removed an object.
var (
	PhotoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_uploads_total",
			Help: "Total number of photos successfully uploaded, by storage backend.",
		},
		[]string{"backend"},
	)

	PhotoDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_downloads_total",
			Help: "Total number of photos successfully served or redirected, by storage backend.",
		},
		[]string{"backend"},
	)

	PhotoDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_deletes_total",
			Help: "Total number of photos successfully deleted, by storage backend.",
		},
		[]string{"backend"},
	)
)

// Storage health metrics.
//
// StorageOperationErrorsTotal is a CounterVec with labels {backend, operation}
// incremented whenever a storage call returns an error that is surfaced to a
// client.  operation is one of "upload", "download", "delete", "list", "exists".
// An alert on rate(storage_operation_errors_total[5m]) > 0 catches cloud
// outages that started after boot (the boot-time probe only covers startup).
//
// StorageFallbacksTotal is a CounterVec with label {backend} incremented once
// at boot when the preferred backend failed to initialise and the service fell
// back to local storage.  A non-zero value means the deployment is silently
// not using the configured cloud backend.
//
// Example PromQL queries:
//   - Alert expression:  increase(storage_fallbacks_total[1h]) > 0
var (
	StorageOperationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operation_errors_total",
			Help: "Total number of failed storage operations, by backend and operation.",
		},
		[]string{"backend", "operation"},
	)

	StorageFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_fallbacks_total",
			Help: "Total number of boot-time fallbacks to local storage, by the backend that failed.",
		},
		[]string{"backend"},
	)
)
