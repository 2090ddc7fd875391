package acl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/config"
)

func testRoute() domain.Route {
	return domain.Route{
		Origin:          "PNQ",
		OriginName:      "Pune",
		Destination:     "VNS",
		DestinationName: "Varanasi",
		Date:            time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		Stops:           0,
		Currency:        "INR",
		CurrencySymbol:  "₹",
		Locale:          "en",
	}
}

func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: PricingServiceName,
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	}
}

// setupFareClient creates a FareClient with a test HTTP server.
func setupFareClient(t *testing.T, mode string, handler http.HandlerFunc) *FareClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testClientConfig(server.URL))
	require.NoError(t, err)

	strategies, err := StrategiesFor(mode)
	require.NoError(t, err)

	return NewFareClient(FareClientConfig{
		Client:     client,
		APIKey:     "serp-key",
		Engine:     "google_flights",
		Strategies: strategies,
	})
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewFareClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewFareClient(FareClientConfig{})
	})
}

func TestNewFareClient_DefaultsToAuto(t *testing.T) {
	client, err := clients.New(testClientConfig("http://localhost"))
	require.NoError(t, err)

	fc := NewFareClient(FareClientConfig{Client: client})
	assert.Equal(t, "best_flights, price_insights", strategyNames(fc.strategies))
}

func TestFareClient_SendsSearchParameters(t *testing.T) {
	var gotPath string
	var got url.Values

	fc := setupFareClient(t, StrategyAuto, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = r.URL.Query()
		jsonHandler(http.StatusOK, `{"best_flights": [{"price": 4200}]}`)(w, r)
	})

	_, err := fc.FetchCheapestFare(context.Background(), testRoute())
	require.NoError(t, err)

	want := url.Values{
		"engine":        {"google_flights"},
		"departure_id":  {"PNQ"},
		"arrival_id":    {"VNS"},
		"outbound_date": {"2025-12-15"},
		"stops":         {"1"},
		"type":          {"2"},
		"currency":      {"INR"},
		"hl":            {"en"},
		"api_key":       {"serp-key"},
	}

	assert.Equal(t, "/search", gotPath)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestFareClient_FetchCheapestFare(t *testing.T) {
	tests := []struct {
		name string
		mode string
		body string
		want *domain.FlightQuote
	}{
		{
			name: "best flights with link",
			mode: StrategyAuto,
			body: `{
				"search_metadata": {"status": "Success", "google_flights_url": "http://x"},
				"best_flights": [{"price": 4200, "flights": [{"airline": "IndiGo"}]}],
				"price_insights": {"lowest_price": 3900}
			}`,
			want: &domain.FlightQuote{Airline: "IndiGo", Price: 4200, Currency: "INR", Link: "http://x"},
		},
		{
			name: "falls back to price insights without metadata",
			mode: StrategyAuto,
			body: `{"price_insights": {"lowest_price": 3900}}`,
			want: &domain.FlightQuote{Price: 3900, Currency: "INR", Link: domain.NoLink},
		},
		{
			name: "non string link falls back to no link",
			mode: StrategyAuto,
			body: `{"price_insights": {"lowest_price": 3900}, "search_metadata": {"google_flights_url": 5}}`,
			want: &domain.FlightQuote{Price: 3900, Currency: "INR", Link: domain.NoLink},
		},
		{
			name: "metadata of the wrong shape falls back to no link",
			mode: StrategyAuto,
			body: `{"best_flights": [{"price": 4200, "flights": [{"airline": "IndiGo"}]}], "search_metadata": "pending"}`,
			want: &domain.FlightQuote{Airline: "IndiGo", Price: 4200, Currency: "INR", Link: domain.NoLink},
		},
		{
			name: "price insights only ignores best flights",
			mode: StrategyPriceInsights,
			body: `{
				"best_flights": [{"price": 4200, "flights": [{"airline": "IndiGo"}]}],
				"price_insights": {"lowest_price": 3900}
			}`,
			want: &domain.FlightQuote{Price: 3900, Currency: "INR", Link: domain.NoLink},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := setupFareClient(t, tt.mode, jsonHandler(http.StatusOK, tt.body))

			got, err := fc.FetchCheapestFare(context.Background(), testRoute())
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("quote mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFareClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		status    int
		body      string
		contains  string
		malformed bool
	}{
		{
			name:     "invalid api key",
			mode:     StrategyAuto,
			status:   http.StatusUnauthorized,
			body:     `{"error": "Invalid API key."}`,
			contains: "Invalid API key.",
		},
		{
			name:     "server error",
			mode:     StrategyAuto,
			status:   http.StatusInternalServerError,
			contains: "status 500",
		},
		{
			name:     "server error with api message",
			mode:     StrategyAuto,
			status:   http.StatusInternalServerError,
			body:     `{"error": "Google Flights is temporarily unavailable."}`,
			contains: "status 500: Google Flights is temporarily unavailable.",
		},
		{
			name:     "error field on success status",
			mode:     StrategyAuto,
			status:   http.StatusOK,
			body:     `{"search_metadata": {"status": "Error"}, "error": "Google Flights hasn't returned any results for this query."}`,
			contains: "hasn't returned any results",
		},
		{
			name:      "not json",
			mode:      StrategyAuto,
			status:    http.StatusOK,
			body:      `<html></html>`,
			contains:  "decoding response",
			malformed: true,
		},
		{
			name:      "no strategy matches",
			mode:      StrategyAuto,
			status:    http.StatusOK,
			body:      `{"other_flights": []}`,
			contains:  "no fare found in response (tried best_flights, price_insights)",
			malformed: true,
		},
		{
			name:      "best flights only without best flights",
			mode:      StrategyBestFlights,
			status:    http.StatusOK,
			body:      `{"price_insights": {"lowest_price": 3900}}`,
			contains:  "tried best_flights)",
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := setupFareClient(t, tt.mode, jsonHandler(tt.status, tt.body))

			quote, err := fc.FetchCheapestFare(context.Background(), testRoute())
			require.Error(t, err)
			assert.Nil(t, quote)

			var fetchErr *domain.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.True(t, domain.IsFetch(err))
			assert.Equal(t, tt.malformed, domain.IsMalformed(err))
			assert.Contains(t, fetchErr.Cause, tt.contains)
			assert.NotContains(t, fetchErr.Cause, "serp-key")
		})
	}
}

func TestFareClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := testClientConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client, err := clients.New(cfg)
	require.NoError(t, err)

	fc := NewFareClient(FareClientConfig{Client: client, APIKey: "serp-key", Engine: "google_flights"})

	_, err = fc.FetchCheapestFare(context.Background(), testRoute())
	require.Error(t, err)
	assert.True(t, domain.IsFetch(err))
	assert.True(t, domain.IsUnavailable(err))
	assert.NotContains(t, err.Error(), "serp-key")
	assert.NotContains(t, err.Error(), server.URL)
}

func TestFareClient_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		var gotPath, gotKey string
		fc := setupFareClient(t, StrategyAuto, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("api_key")
			jsonHandler(http.StatusOK, `{"account_email": "me@example.com"}`)(w, r)
		})

		require.NoError(t, fc.Check(context.Background()))
		assert.Equal(t, "/account.json", gotPath)
		assert.Equal(t, "serp-key", gotKey)
		assert.Equal(t, "serpapi", fc.Name())
	})

	t.Run("rejected key", func(t *testing.T) {
		fc := setupFareClient(t, StrategyAuto, jsonHandler(http.StatusUnauthorized, `{"error": "Invalid API key."}`))

		err := fc.Check(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
	})
}
