package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header carrying the request identifier.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID is stored
	// so the request logger can read it without parsing headers.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware tags every request with an identifier propagated as the
// X-Request-ID header. An inbound value, set by a proxy or the gallery
// frontend, is reused unchanged so one upload can be traced across hops;
// otherwise a UUID v4 is generated. The ID is stored under RequestIDKey for
// the structured request log and echoed in the response so a client can quote
// it when reporting a failed upload.
//
// Register it before the logging middleware so every log line carries the ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
