// errors.go defines the sentinel errors shared by all storage backends.
// Backends wrap these with fmt.Errorf("...: %w", ...) so callers can classify
// failures with errors.Is without inspecting SDK-specific error types.
package storage

import "errors"

var (
	// ErrBackendUnavailable indicates the backend could not be reached or
	// constructed. At boot this triggers the fallback to local storage; at
	// request time it propagates to the caller.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrWriteFailed indicates an upload or delete failed. Operations are
	// never retried; the failure propagates as-is.
	ErrWriteFailed = errors.New("storage write failed")
)
