package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/jsamuelsen/flight-watcher/internal/adapters/clients"
	"github.com/jsamuelsen/flight-watcher/internal/domain"
	"github.com/jsamuelsen/flight-watcher/internal/platform/logging"
)

const (
	// PricingServiceName names the pricing API in logs, errors and health checks.
	PricingServiceName = "serpapi"

	searchPath  = "/search"
	accountPath = "/account.json"

	// tripTypeOneWay is the SerpApi "type" value for one-way searches.
	tripTypeOneWay = "2"
)

// FareClientConfig contains configuration for the fare client.
type FareClientConfig struct {
	// Client is the HTTP client. Its BaseURL points at the pricing API.
	Client *clients.Client

	// APIKey is sent as the api_key query parameter.
	APIKey string

	// Engine is the search engine name, e.g. "google_flights".
	Engine string

	// Strategies are tried in order. Defaults to StrategiesFor(StrategyAuto).
	Strategies []ParseStrategy
}

// FareClient implements ports.FareFetcher against the SerpApi Google Flights engine.
type FareClient struct {
	BaseAdapter
	apiKey     string
	engine     string
	strategies []ParseStrategy
}

// NewFareClient creates a new fare client adapter.
// Panics if Client is nil.
func NewFareClient(cfg FareClientConfig) *FareClient {
	if cfg.Client == nil {
		panic("FareClient: Client is required")
	}

	strategies := cfg.Strategies
	if len(strategies) == 0 {
		strategies, _ = StrategiesFor(StrategyAuto)
	}

	return &FareClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, PricingServiceName),
		apiKey:      cfg.APIKey,
		engine:      cfg.Engine,
		strategies:  strategies,
	}
}

// searchEnvelope holds the fields shared by every search response shape.
// The metadata stays raw; a malformed deep link must not fail the fetch.
type searchEnvelope struct {
	Error          string          `json:"error"`
	SearchMetadata json.RawMessage `json:"search_metadata"`
}

// deepLink returns search_metadata.google_flights_url, or domain.NoLink when
// the metadata or the URL is missing or not a string.
func deepLink(metadata json.RawMessage) string {
	var m struct {
		GoogleFlightsURL any `json:"google_flights_url"`
	}
	if err := json.Unmarshal(metadata, &m); err != nil {
		return domain.NoLink
	}

	if link, ok := m.GoogleFlightsURL.(string); ok && link != "" {
		return link
	}

	return domain.NoLink
}

// FetchCheapestFare performs one search for route and returns the cheapest fare.
// Every failure is returned as a *domain.FetchError.
func (c *FareClient) FetchCheapestFare(ctx context.Context, route domain.Route) (*domain.FlightQuote, error) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "fetching flight data",
		slog.String("origin", route.Origin),
		slog.String("destination", route.Destination),
		slog.String("date", route.Date.Format(domain.DateLayout)),
	)

	body, err := c.Get(ctx, searchPath, c.searchQuery(route), "flight search")
	if err != nil {
		return nil, domain.NewFetchError(err)
	}

	logger.Log(ctx, logging.LevelTrace, "flight search response received", slog.Int("bytes", len(body)))

	quote, err := c.translate(ctx, body, route)
	if err != nil {
		return nil, domain.NewFetchError(err)
	}

	logger.InfoContext(ctx, "flight data fetched",
		slog.String("airline", quote.Airline),
		slog.String("price", quote.FormatPrice(route.CurrencySymbol)),
	)

	return quote, nil
}

// searchQuery builds the search parameters. The API counts stops as
// 0=any, 1=nonstop, 2=one stop or fewer, so the route's maximum stop
// count is shifted by one.
func (c *FareClient) searchQuery(route domain.Route) url.Values {
	return url.Values{
		"engine":        {c.engine},
		"departure_id":  {route.Origin},
		"arrival_id":    {route.Destination},
		"outbound_date": {route.Date.Format(domain.DateLayout)},
		"stops":         {strconv.Itoa(route.Stops + 1)},
		"type":          {tripTypeOneWay},
		"currency":      {route.Currency},
		"hl":            {route.Locale},
		"api_key":       {c.apiKey},
	}
}

// translate converts a search response into a domain quote using the first
// matching parse strategy.
func (c *FareClient) translate(ctx context.Context, body []byte, route domain.Route) (*domain.FlightQuote, error) {
	envelope, err := Decode[searchEnvelope](body, c.ServiceName())
	if err != nil {
		return nil, err
	}

	if envelope.Error != "" {
		return nil, domain.NewUnavailableError(c.ServiceName(), envelope.Error)
	}

	link := deepLink(envelope.SearchMetadata)

	for _, strategy := range c.strategies {
		f, ok, err := strategy.Extract(body)
		if err != nil {
			return nil, domain.NewMalformedError(c.ServiceName(), err.Error())
		}
		if !ok {
			continue
		}

		logging.FromContext(ctx).DebugContext(ctx, "parse strategy matched", slog.String("strategy", strategy.Name()))

		return &domain.FlightQuote{
			Airline:  f.Airline,
			Price:    f.Price,
			Currency: route.Currency,
			Link:     link,
		}, nil
	}

	return nil, domain.NewMalformedError(c.ServiceName(),
		fmt.Sprintf("no fare found in response (tried %s)", strategyNames(c.strategies)))
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *FareClient) Name() string {
	return PricingServiceName
}

// Check verifies the API key against the account endpoint, which does not
// consume search credits.
// Implements ports.HealthChecker.
func (c *FareClient) Check(ctx context.Context) error {
	_, err := c.Get(ctx, accountPath, url.Values{"api_key": {c.apiKey}}, "account lookup")
	return err
}
