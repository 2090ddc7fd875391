// Package ports defines the interfaces the poll cycle depends on.
// Adapters implement them; the app package only sees these contracts.
//
// Conventions:
//   - Context is always the first parameter
//   - Only domain types cross the boundary, never API DTOs
//   - Errors are domain errors (ErrFetch, ErrDelivery)
package ports

import (
	"context"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
)

// FareFetcher looks up the cheapest fare for a route.
type FareFetcher interface {
	// FetchCheapestFare performs one search. Every failure is returned as a
	// *domain.FetchError whose Cause is fit for a notification body.
	FetchCheapestFare(ctx context.Context, route domain.Route) (*domain.FlightQuote, error)
}

// Notifier delivers a notification through one mail transport.
type Notifier interface {
	// Deliver sends msg once. Failures are returned as *domain.DeliveryError
	// and are never retried by the caller.
	Deliver(ctx context.Context, msg domain.NotificationMessage) error
}
