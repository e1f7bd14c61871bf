// Package safego launches background goroutines that cannot take the process
// down. The server uses it for work that runs beside the request path, such as
// the Prometheus side-channel listener.
package safego

import "log/slog"

// Go runs fn in a new goroutine and converts any panic into an error log. A
// panicking metrics listener must not kill photo serving, so fire-and-forget
// goroutines go through here instead of a bare go statement.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
