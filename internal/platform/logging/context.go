package logging

import (
	"context"
	"log/slog"
)

type (
	loggerKey        struct{}
	correlationIDKey struct{}
)

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithRequestID tags the context logger with an inbound request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withAttr(ctx, slog.String("request_id", requestID))
}

// WithCorrelationID tags the context logger with a poll cycle or request
// correlation ID. The raw ID is kept so outbound clients can forward it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey{}, correlationID)
	return withAttr(ctx, slog.String("correlation_id", correlationID))
}

// CorrelationIDFromContext returns the ID stored by WithCorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

func withAttr(ctx context.Context, attr slog.Attr) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attr))
}

// SetDefault replaces both the package fallback and slog's default logger.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
