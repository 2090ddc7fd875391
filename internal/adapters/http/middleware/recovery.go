package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Recovery returns middleware that turns a handler panic into a plain-text 500
// and logs the stack trace. Apply it first.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()

			attrs := []any{
				slog.String("request_id", GetRequestID(c)),
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			}
			if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}

			logger.ErrorContext(ctx, "panic recovered", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusInternalServerError)
			_, _ = c.Writer.WriteString("internal error")
		}()

		c.Next()
	}
}
