package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
)

// maxErrorBodyBytes bounds how much of an error body is read for a message.
const maxErrorBodyBytes = 64 << 10

// ErrorResponse covers the error bodies of the APIs this service calls.
// SerpApi answers {"error": "..."}; SendGrid answers {"errors": [{"message": "..."}]}.
type ErrorResponse struct {
	Error  string        `json:"error,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one entry of a SendGrid style error list.
type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// GetMessage returns the first non-empty message in the response.
func (e *ErrorResponse) GetMessage() string {
	if e.Error != "" {
		return e.Error
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Message == "" {
			continue
		}
		if d.Field != "" {
			msgs = append(msgs, d.Field+": "+d.Message)
			continue
		}
		msgs = append(msgs, d.Message)
	}

	return strings.Join(msgs, "; ")
}

// ParseErrorResponse attempts to parse an error response body.
// Returns nil if the body is empty, unparseable, or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBodyBytes)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps a failed call to a domain error.
//
// Parameters:
//   - resp: the HTTP response (nil for transport errors)
//   - clientErr: the error returned by clients.Client (nil when resp is set)
//   - serviceName: name of the downstream API for error context
//   - operation: what was being attempted (e.g. "flight search")
//
// Returns nil for 2xx responses.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation)
}

// mapClientError translates clients.Client errors to domain errors.
func mapClientError(err error, serviceName, operation string) error {
	var statusErr *clients.StatusError

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s skipped: %v", operation, err))

	case errors.As(err, &statusErr):
		return mapStatusCode(statusErr.StatusCode, ParseErrorResponse(bytes.NewReader(statusErr.Body)), serviceName, operation)

	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s timed out: %v", operation, err))

	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

// mapStatusCode translates a non-2xx status to a domain error.
func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation string) error {
	message := defaultMessageForStatus(status, operation)
	if errResp != nil {
		message = errResp.GetMessage()
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("credentials rejected (status %d): %s", status, message))
	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("rate limit exceeded: %s", message))
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("status %d: %s", status, message))
	}
}

// defaultMessageForStatus returns a default message for an HTTP status.
func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "endpoint not found"
	case http.StatusTooManyRequests:
		return "too many requests"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed", operation)
	}
}
