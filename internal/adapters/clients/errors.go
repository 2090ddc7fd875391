// Package clients provides the instrumented HTTP client shared by the pricing
// and mail adapters.
package clients

import (
	"errors"
	"fmt"
)

// Client errors represent failures in the HTTP client layer. Adapters translate
// them into domain errors.
var (
	// ErrCircuitOpen is returned while the circuit breaker blocks requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed is returned when every attempt failed. The last attempt's
	// error is wrapped alongside it.
	ErrRequestFailed = errors.New("request failed")
)

// StatusError reports a 5xx response that exhausted the retry budget.
// Body holds the start of the response body so adapters can surface the
// API's own error message.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
