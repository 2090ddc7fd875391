package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/flight-watcher/internal/platform/telemetry"

	// HeaderTraceID carries the trace ID of a sampled request back to the caller.
	HeaderTraceID = "X-Trace-ID"

	unmatchedRoute = "unmatched"
)

// serverMetrics holds the liveness server instruments.
type serverMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &serverMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Tracing returns the otelgin span middleware for the liveness server.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Metrics returns middleware recording request metrics and echoing the
// trace ID. It must run after Tracing. Instrument creation errors go to the global otel error handler
// and leave the middleware recording nothing.
func Metrics() gin.HandlerFunc {
	m, err := newServerMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		start := time.Now()
		if m != nil {
			m.activeRequests.Add(ctx, 1, metric.WithAttributes(base...))
			defer m.activeRequests.Add(ctx, -1, metric.WithAttributes(base...))
		}

		c.Next()

		if m == nil {
			return
		}

		attrs := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.requestTotal.Add(ctx, 1, attrs)
	}
}
