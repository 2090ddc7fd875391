// Package app contains the poll cycle that ties the fare fetcher to the notifier.
package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
	"github.com/jsamuelsen/flight-watcher/internal/ports"
)

// DefaultInterval is the pause between two poll cycles.
const DefaultInterval = 3 * time.Hour

const instrumentationName = "github.com/jsamuelsen/flight-watcher/internal/app"

// WatcherConfig contains the dependencies of a Watcher.
type WatcherConfig struct {
	Fetcher  ports.FareFetcher
	Notifier ports.Notifier
	Route    domain.Route

	// Interval defaults to DefaultInterval.
	Interval time.Duration

	// Metrics is optional.
	Metrics *CycleMetrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// CycleResult describes what one poll cycle did.
type CycleResult struct {
	CorrelationID string
	Quote         *domain.FlightQuote
	FetchErr      error
	Message       domain.NotificationMessage
	DeliveryErr   error
}

// Watcher polls the fare fetcher and mails every outcome.
// States: polling (inside RunCycle) and sleeping (between cycles in Run).
type Watcher struct {
	fetcher  ports.FareFetcher
	notifier ports.Notifier
	route    domain.Route
	interval time.Duration
	metrics  *CycleMetrics
	logger   *slog.Logger
	tracer   trace.Tracer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// NewWatcher creates a watcher. Panics if Fetcher or Notifier is nil.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Fetcher == nil {
		panic("Watcher: Fetcher is required")
	}

	if cfg.Notifier == nil {
		panic("Watcher: Notifier is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		fetcher:  cfg.Fetcher,
		notifier: cfg.Notifier,
		route:    cfg.Route,
		interval: interval,
		metrics:  cfg.Metrics,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		now:      time.Now,
		sleep:    sleepContext,
		newID:    uuid.NewString,
	}
}

// Interval returns the pause between cycles.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Run executes cycles until ctx is cancelled. Fetch and delivery failures are
// reported per cycle and never end the loop; Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		w.RunCycle(ctx)

		w.logger.InfoContext(ctx, "Sleeping for "+formatHours(w.interval)+" hours",
			slog.Duration("interval", w.interval),
		)

		if err := w.sleep(ctx, w.interval); err != nil {
			w.logger.InfoContext(ctx, "watcher stopped", slog.String("reason", err.Error()))
			return nil
		}
	}
}

// RunCycle fetches the cheapest fare, builds the message and delivers it once.
func (w *Watcher) RunCycle(ctx context.Context) CycleResult {
	id := w.newID()

	ctx, span := w.tracer.Start(ctx, "poll cycle", trace.WithAttributes(
		attribute.String("correlation_id", id),
		attribute.String("route.origin", w.route.Origin),
		attribute.String("route.destination", w.route.Destination),
	))
	defer span.End()

	ctx = logging.WithContext(ctx, w.logger)
	ctx = logging.WithCorrelationID(ctx, id)
	logger := logging.FromContext(ctx)

	logger.InfoContext(ctx, "Starting new polling cycle",
		slog.String("route", w.route.Description()),
	)

	result := CycleResult{CorrelationID: id}

	result.Quote, result.FetchErr = w.fetcher.FetchCheapestFare(ctx, w.route)
	if result.FetchErr != nil {
		logger.WarnContext(ctx, "fetch failed", slog.Any("error", result.FetchErr))
		span.RecordError(result.FetchErr)
		w.observeFetchFailure()
	} else if result.Quote != nil {
		logger.InfoContext(ctx, "cheapest fare found",
			slog.String("airline", result.Quote.Airline),
			slog.Float64("price", result.Quote.Price),
			slog.String("currency", result.Quote.Currency),
		)
		w.observePrice(result.Quote)
	}

	result.Message = domain.NewNotificationMessage(w.route, w.now(), result.Quote, result.FetchErr)

	result.DeliveryErr = w.notifier.Deliver(ctx, result.Message)
	if result.DeliveryErr != nil {
		logger.ErrorContext(ctx, "email delivery failed", slog.Any("error", result.DeliveryErr))
		span.RecordError(result.DeliveryErr)
		span.SetStatus(codes.Error, "delivery failed")
		w.observeDeliveryFailure()
	}

	if w.metrics != nil {
		w.metrics.Cycles.Inc()
	}

	return result
}

func (w *Watcher) observeFetchFailure() {
	if w.metrics != nil {
		w.metrics.FetchFailures.Inc()
	}
}

func (w *Watcher) observeDeliveryFailure() {
	if w.metrics != nil {
		w.metrics.DeliveryFailures.Inc()
	}
}

func (w *Watcher) observePrice(q *domain.FlightQuote) {
	if w.metrics == nil {
		return
	}

	w.metrics.LastPrice.WithLabelValues(w.route.Origin, w.route.Destination, q.Currency).Set(q.Price)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// formatHours renders d in hours without trailing zeros, e.g. "3" or "0.5".
func formatHours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', -1, 64)
}
