package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/mocks"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoute() domain.Route {
	return domain.Route{
		Origin:          "PNQ",
		OriginName:      "Pune",
		Destination:     "VNS",
		DestinationName: "Varanasi",
		Date:            time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		Currency:        "INR",
		CurrencySymbol:  "₹",
		Locale:          "en",
	}
}

var fixedNow = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

const expectedSubject = "[Flight Update] Pune → Varanasi (15 Dec 2025) - 09:00 01-Dec"

// newTestWatcher creates a watcher with a fixed clock and sequential cycle IDs.
func newTestWatcher(fetcher *mocks.MockFareFetcher, notifier *mocks.MockNotifier, metrics *CycleMetrics) *Watcher {
	w := NewWatcher(WatcherConfig{
		Fetcher:  fetcher,
		Notifier: notifier,
		Route:    testRoute(),
		Metrics:  metrics,
		Logger:   discardLogger(),
	})

	w.now = func() time.Time { return fixedNow }

	var n int
	w.newID = func() string {
		n++
		return "cycle-" + strconv.Itoa(n)
	}

	return w
}

func TestNewWatcher_PanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() {
		NewWatcher(WatcherConfig{Notifier: mocks.NewMockNotifier(t)})
	})

	assert.Panics(t, func() {
		NewWatcher(WatcherConfig{Fetcher: mocks.NewMockFareFetcher(t)})
	})
}

func TestNewWatcher_Defaults(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		Fetcher:  mocks.NewMockFareFetcher(t),
		Notifier: mocks.NewMockNotifier(t),
	})

	assert.Equal(t, DefaultInterval, w.Interval())
	assert.NotNil(t, w.logger)
}

func TestWatcher_RunCycle(t *testing.T) {
	tests := []struct {
		name        string
		quote       *domain.FlightQuote
		fetchErr    error
		deliveryErr error
		wantBody    string
	}{
		{
			name: "fare found",
			quote: &domain.FlightQuote{
				Airline:  "IndiGo",
				Price:    4200,
				Currency: "INR",
				Link:     "http://x",
			},
			wantBody: "Cheapest nonstop flight:\nAirline: IndiGo\nPrice: ₹4200\nLink: http://x",
		},
		{
			name:     "fare without airline or link",
			quote:    &domain.FlightQuote{Price: 3900, Currency: "INR", Link: domain.NoLink},
			wantBody: "Cheapest nonstop flight:\nPrice: ₹3900\nLink: No link",
		},
		{
			name:     "fetch failure is mailed",
			fetchErr: domain.NewFetchError(errors.New("request timed out")),
			wantBody: "Error fetching flight: request timed out",
		},
		{
			name: "delivery failure is reported",
			quote: &domain.FlightQuote{
				Airline:  "IndiGo",
				Price:    4200,
				Currency: "INR",
				Link:     "http://x",
			},
			deliveryErr: domain.NewDeliveryStatusError("sendgrid", 500, "internal error"),
			wantBody:    "Cheapest nonstop flight:\nAirline: IndiGo\nPrice: ₹4200\nLink: http://x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := mocks.NewMockFareFetcher(t)
			notifier := mocks.NewMockNotifier(t)

			fetcher.EXPECT().FetchCheapestFare(mock.Anything, testRoute()).Return(tt.quote, tt.fetchErr)
			notifier.EXPECT().Deliver(mock.Anything, domain.NotificationMessage{
				Subject: expectedSubject,
				Body:    tt.wantBody,
			}).Return(tt.deliveryErr)

			w := newTestWatcher(fetcher, notifier, nil)
			result := w.RunCycle(context.Background())

			assert.Equal(t, "cycle-1", result.CorrelationID)
			assert.Equal(t, tt.wantBody, result.Message.Body)
			assert.Equal(t, tt.quote, result.Quote)

			if tt.fetchErr != nil {
				assert.True(t, domain.IsFetch(result.FetchErr))
			} else {
				assert.NoError(t, result.FetchErr)
			}

			if tt.deliveryErr != nil {
				assert.True(t, domain.IsDelivery(result.DeliveryErr))
			} else {
				assert.NoError(t, result.DeliveryErr)
			}
		})
	}
}

func TestWatcher_RunCycle_PropagatesCorrelationID(t *testing.T) {
	fetcher := mocks.NewMockFareFetcher(t)
	notifier := mocks.NewMockNotifier(t)

	var fetchID, deliverID string

	fetcher.EXPECT().FetchCheapestFare(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, _ domain.Route) {
			fetchID = logging.CorrelationIDFromContext(ctx)
		}).
		Return(&domain.FlightQuote{Price: 1, Currency: "INR"}, nil)
	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, _ domain.NotificationMessage) {
			deliverID = logging.CorrelationIDFromContext(ctx)
		}).
		Return(nil)

	w := newTestWatcher(fetcher, notifier, nil)
	w.RunCycle(context.Background())

	assert.Equal(t, "cycle-1", fetchID)
	assert.Equal(t, "cycle-1", deliverID)
}

func TestWatcher_RunCycle_Metrics(t *testing.T) {
	fetcher := mocks.NewMockFareFetcher(t)
	notifier := mocks.NewMockNotifier(t)

	reg := prometheus.NewRegistry()
	metrics := NewCycleMetrics(reg)

	fetcher.EXPECT().FetchCheapestFare(mock.Anything, mock.Anything).
		Return(&domain.FlightQuote{Airline: "IndiGo", Price: 4200, Currency: "INR"}, nil).Once()
	fetcher.EXPECT().FetchCheapestFare(mock.Anything, mock.Anything).
		Return(nil, domain.NewFetchError(errors.New("boom"))).Once()
	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).Return(nil).Once()
	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).
		Return(domain.NewDeliveryError("smtp", errors.New("dial failed"))).Once()

	w := newTestWatcher(fetcher, notifier, metrics)
	w.RunCycle(context.Background())
	w.RunCycle(context.Background())

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Cycles), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchFailures), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DeliveryFailures), 0)
	assert.InDelta(t, 4200, testutil.ToFloat64(metrics.LastPrice.WithLabelValues("PNQ", "VNS", "INR")), 0)
}

func TestWatcher_Run_ContinuesAfterDeliveryFailure(t *testing.T) {
	fetcher := mocks.NewMockFareFetcher(t)
	notifier := mocks.NewMockNotifier(t)

	quote := &domain.FlightQuote{Airline: "IndiGo", Price: 4200, Currency: "INR", Link: "http://x"}
	fetcher.EXPECT().FetchCheapestFare(mock.Anything, testRoute()).Return(quote, nil).Times(2)
	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).
		Return(domain.NewDeliveryStatusError("sendgrid", 500, "")).Once()
	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := newTestWatcher(fetcher, notifier, nil)

	var slept []time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		if len(slept) == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := w.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultInterval, DefaultInterval}, slept)
}

func TestWatcher_Run_StopsWhenCancelledWhileSleeping(t *testing.T) {
	fetcher := mocks.NewMockFareFetcher(t)
	notifier := mocks.NewMockNotifier(t)

	fetcher.EXPECT().FetchCheapestFare(mock.Anything, mock.Anything).
		Return(nil, domain.NewFetchError(errors.New("boom"))).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier.EXPECT().Deliver(mock.Anything, mock.Anything).
		Run(func(context.Context, domain.NotificationMessage) { cancel() }).
		Return(nil).Once()

	w := newTestWatcher(fetcher, notifier, nil)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestSleepContext(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		err := sleepContext(context.Background(), time.Millisecond)
		assert.NoError(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := sleepContext(ctx, time.Hour)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{3 * time.Hour, "3"},
		{90 * time.Minute, "1.5"},
		{30 * time.Minute, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatHours(tt.in))
		})
	}
}
