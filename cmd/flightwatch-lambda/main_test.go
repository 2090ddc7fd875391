package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flight-watcher/internal/app"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/mocks"
)

func TestHandler_RunsOneCycle(t *testing.T) {
	fetcher := mocks.NewMockFareFetcher(t)
	notifier := mocks.NewMockNotifier(t)

	fetcher.EXPECT().FetchCheapestFare(mock.Anything, mock.Anything).
		Return(nil, domain.NewFetchError(errors.New("status 503"))).Once()
	notifier.EXPECT().Deliver(mock.Anything, mock.MatchedBy(func(m domain.NotificationMessage) bool {
		return m.Body == "Error fetching flight: status 503"
	})).Return(domain.NewDeliveryStatusError("sendgrid", 401, "")).Once()

	w := app.NewWatcher(app.WatcherConfig{
		Fetcher:  fetcher,
		Notifier: notifier,
		Route: domain.Route{
			OriginName:      "Pune",
			DestinationName: "Varanasi",
			Date:            time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	h := handler(w, slog.New(slog.NewTextHandler(io.Discard, nil)))

	out, err := h(context.Background(), events.CloudWatchEvent{ID: "evt-1", Source: "aws.events"})

	require.NoError(t, err)
	assert.NotEmpty(t, out.CorrelationID)
	assert.Contains(t, out.Subject, "Pune → Varanasi (15 Dec 2025)")
	assert.Equal(t, "status 503", out.FetchError)
	assert.Equal(t, "sendgrid delivery failed with status 401", out.DeliveryError)
}

func TestNewOutput_Success(t *testing.T) {
	out := newOutput(app.CycleResult{
		CorrelationID: "abc",
		Message:       domain.NotificationMessage{Subject: "s"},
	})

	assert.Equal(t, cycleOutput{CorrelationID: "abc", Subject: "s"}, out)
}
