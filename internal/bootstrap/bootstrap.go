// Package bootstrap wires configuration, logging, telemetry and adapters into
// a ready-to-run Watcher. Both binaries start from here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients/acl"
	"github.com/jsamuelsen/flight-watcher/internal/adapters/mail"
	"github.com/jsamuelsen/flight-watcher/internal/app"
	"github.com/jsamuelsen/flight-watcher/internal/platform/config"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
	"github.com/jsamuelsen/flight-watcher/internal/platform/telemetry"
	"github.com/jsamuelsen/flight-watcher/internal/ports"
)

// LoadConfig loads the profile and validates it. Missing credentials fail here.
func LoadConfig(profile string) (*config.Config, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger and installs it as the default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	return logger
}

// Components are the long-lived objects of one process.
type Components struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *telemetry.Provider
	Metrics   *prometheus.Registry
	Health    *ports.DefaultHealthRegistry
	Watcher   *app.Watcher
}

// Build creates every adapter for cfg. Nothing is contacted until the
// watcher runs or a readiness check is made.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	tel, err := telemetry.New(ctx, telemetry.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	route, err := cfg.Route.ToDomain()
	if err != nil {
		return nil, err
	}

	strategies, err := acl.StrategiesFor(cfg.Pricing.ParseStrategy)
	if err != nil {
		return nil, err
	}

	pricingClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Pricing.BaseURL,
		ServiceName: acl.PricingServiceName,
		Timeout:     cfg.Pricing.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating pricing client: %w", err)
	}

	fares := acl.NewFareClient(acl.FareClientConfig{
		Client:     pricingClient,
		APIKey:     cfg.Pricing.APIKey,
		Engine:     cfg.Pricing.Engine,
		Strategies: strategies,
	})

	notifier, err := mail.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating %s notifier: %w", cfg.Mail.Transport, err)
	}

	health := ports.NewHealthRegistry(ports.DefaultCheckTimeout)
	if err := health.Register(fares); err != nil {
		return nil, err
	}

	if checker, ok := notifier.(ports.HealthChecker); ok {
		if err := health.Register(checker); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	watcher := app.NewWatcher(app.WatcherConfig{
		Fetcher:  fares,
		Notifier: notifier,
		Route:    route,
		Interval: cfg.Schedule.Interval,
		Metrics:  app.NewCycleMetrics(reg),
		Logger:   logger,
	})

	return &Components{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		Metrics:   reg,
		Health:    health,
		Watcher:   watcher,
	}, nil
}

// Shutdown flushes telemetry.
func (c *Components) Shutdown(ctx context.Context) {
	if err := c.Telemetry.Shutdown(ctx); err != nil {
		c.Logger.Error("telemetry shutdown error", slog.Any("error", err))
	}
}
