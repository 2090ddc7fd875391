// Package middleware provides HTTP middleware for the liveness server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID is shared with the outbound clients.
	HeaderCorrelationID = clients.HeaderCorrelationID

	// ContextKeyRequestID is the gin.Context key for the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// RequestID returns middleware that takes X-Request-ID from the request or
// generates one, echoes it on the response and adds it to the context logger.
func RequestID() gin.HandlerFunc {
	return idMiddleware(HeaderRequestID, ContextKeyRequestID, logging.WithRequestID)
}

// CorrelationID works like RequestID for X-Correlation-ID. The ID is stored
// with logging.WithCorrelationID so outbound clients forward it.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware(HeaderCorrelationID, ContextKeyCorrelationID, logging.WithCorrelationID)
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

func idMiddleware(header, key string, enrich func(context.Context, string) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(key, id)
		c.Header(header, id)
		c.Request = c.Request.WithContext(enrich(c.Request.Context(), id))

		c.Next()
	}
}
