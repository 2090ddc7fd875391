package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
)

// maxResponseBytes bounds successful response bodies. Flight searches run to a
// few hundred kilobytes.
const maxResponseBytes = 10 << 20

// BaseAdapter provides the request plumbing shared by downstream adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a new base adapter with the given client and service name.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the downstream API.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request and returns the full body of a 2xx response.
// Any other outcome is returned as a mapped domain error.
func (a *BaseAdapter) Get(ctx context.Context, path string, query url.Values, operation string) ([]byte, error) {
	resp, err := a.client.Get(ctx, path, query)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewUnavailableError(a.serviceName, fmt.Sprintf("reading %s response: %v", operation, err))
	}

	return body, nil
}

// Decode unmarshals a JSON payload into T.
// A payload that is not valid JSON is reported as a domain.MalformedError.
func Decode[T any](body []byte, serviceName string) (*T, error) {
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.NewMalformedError(serviceName, fmt.Sprintf("decoding response: %v", err))
	}

	return &result, nil
}
