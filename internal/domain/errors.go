// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to log output or message bodies by callers.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrFetch indicates the cheapest fare could not be obtained for a poll cycle.
	ErrFetch = errors.New("fetch failed")

	// ErrDelivery indicates a notification could not be handed to the mail transport.
	ErrDelivery = errors.New("delivery failed")

	// ErrMalformed indicates a downstream payload did not have any expected shape.
	ErrMalformed = errors.New("malformed response")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")
)

// FetchError is the single error kind produced by a fare fetch.
// Cause is the human-readable text placed into the notification body.
type FetchError struct {
	Cause string
	Err   error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return e.Cause
}

// Unwrap exposes both the ErrFetch sentinel and the underlying error.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}

	return []error{ErrFetch, e.Err}
}

// NewFetchError wraps err into a FetchError using err's message as the cause.
// A nil err still yields a FetchError, with a generic cause.
func NewFetchError(err error) error {
	if err == nil {
		return &FetchError{Cause: "unknown error"}
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	return &FetchError{Cause: err.Error(), Err: err}
}

// DeliveryError describes a failed notification delivery.
type DeliveryError struct {
	Transport  string
	StatusCode int
	Reason     string
	Err        error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Reason != "":
		return fmt.Sprintf("%s delivery failed with status %d: %s", e.Transport, e.StatusCode, e.Reason)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s delivery failed with status %d", e.Transport, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s delivery failed: %v", e.Transport, e.Err)
	default:
		return fmt.Sprintf("%s delivery failed: %s", e.Transport, e.Reason)
	}
}

// Unwrap exposes both the ErrDelivery sentinel and the underlying error.
func (e *DeliveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDelivery}
	}

	return []error{ErrDelivery, e.Err}
}

// NewDeliveryError creates a delivery error for a transport-level failure.
func NewDeliveryError(transport string, err error) error {
	return &DeliveryError{Transport: transport, Err: err}
}

// NewDeliveryStatusError creates a delivery error for an unexpected status code.
func NewDeliveryStatusError(transport string, status int, reason string) error {
	return &DeliveryError{Transport: transport, StatusCode: status, Reason: reason}
}

// MalformedError provides context for a payload that is missing expected fields.
type MalformedError struct {
	Source string
	Reason string
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// NewMalformedError creates a malformed payload error with context.
func NewMalformedError(source, reason string) error {
	return &MalformedError{Source: source, Reason: reason}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsFetch checks if an error is a fetch error.
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsDelivery checks if an error is a delivery error.
func IsDelivery(err error) bool {
	return errors.Is(err, ErrDelivery)
}

// IsMalformed checks if an error is a malformed payload error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
