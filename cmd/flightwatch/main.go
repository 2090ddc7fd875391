// Package main runs the flight watcher: the poll loop plus the liveness server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/http"
	"github.com/jsamuelsen/flight-watcher/internal/adapters/http/handlers"
	"github.com/jsamuelsen/flight-watcher/internal/bootstrap"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig(os.Getenv("APP_ENVIRONMENT"))
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg)
	logger.Info("starting flight watcher",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("transport", cfg.Mail.Transport),
		slog.Duration("interval", cfg.Schedule.Interval),
	)

	c, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.WithoutCancel(ctx))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Watcher.Run(gctx)
	})

	if cfg.Server.Enabled {
		server := http.New(&cfg.Server, logger)
		http.SetupRouter(server.Engine(), http.RouterConfig{
			Logger:        logger,
			ServiceName:   cfg.Telemetry.ServiceName,
			HealthHandler: handlers.NewHealthHandler(c.Health, handlers.NewBuildInfo(Version, Commit, BuildTime), c.Metrics),
		})

		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	err = g.Wait()
	if err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
