package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/http/handlers"
	"github.com/jsamuelsen/flight-watcher/internal/adapters/http/middleware"
	"github.com/jsamuelsen/flight-watcher/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// HealthHandler serves /-/ routes. Optional.
	HealthHandler *handlers.HealthHandler
}

// SetupRouter configures middleware and routes on the Gin engine.
// Middleware order (first to last):
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing, then metrics
//  5. Logging (skips / and /-/ routes)
//
// Routes:
//   - GET, HEAD / : uptime banner
//   - /-/ : probes, build info and Prometheus metrics
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.ServiceName),
		telemetry.Metrics(),
		middleware.Logging(cfg.Logger, "/"),
	)

	engine.GET("/", handlers.Running)
	engine.HEAD("/", handlers.Running)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
