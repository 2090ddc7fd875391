package acl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Parse strategy names accepted by pricing.parse_strategy.
const (
	StrategyAuto          = "auto"
	StrategyBestFlights   = "best_flights"
	StrategyPriceInsights = "price_insights"
)

// bestFlightsSchema matches a response whose first best_flights entry has a price.
const bestFlightsSchema = `{
  "type": "object",
  "required": ["best_flights"],
  "properties": {
    "best_flights": {
      "type": "array",
      "minItems": 1,
      "items": [{
        "type": "object",
        "required": ["price"],
        "properties": {
          "price": {"type": "number", "minimum": 0},
          "flights": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {"airline": {"type": "string"}}
            }
          }
        }
      }]
    }
  }
}`

// priceInsightsSchema matches a response carrying price_insights.lowest_price.
const priceInsightsSchema = `{
  "type": "object",
  "required": ["price_insights"],
  "properties": {
    "price_insights": {
      "type": "object",
      "required": ["lowest_price"],
      "properties": {
        "lowest_price": {"type": "number", "minimum": 0}
      }
    }
  }
}`

// fare is what a strategy extracts from a search response.
type fare struct {
	Airline string
	Price   float64
}

// ParseStrategy extracts the cheapest fare from one response shape.
type ParseStrategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// Extract returns ok=false when the response does not have this shape.
	Extract(body []byte) (fare, bool, error)
}

// schemaStrategy matches a JSON Schema before decoding with extract.
type schemaStrategy struct {
	name    string
	schema  *gojsonschema.Schema
	extract func(body []byte) (fare, error)
}

func (s *schemaStrategy) Name() string {
	return s.name
}

func (s *schemaStrategy) Extract(body []byte) (fare, bool, error) {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fare{}, false, fmt.Errorf("matching %s shape: %w", s.name, err)
	}

	if !result.Valid() {
		return fare{}, false, nil
	}

	f, err := s.extract(body)
	if err != nil {
		return fare{}, false, fmt.Errorf("extracting %s: %w", s.name, err)
	}

	return f, true, nil
}

func mustSchemaStrategy(name, schema string, extract func([]byte) (fare, error)) *schemaStrategy {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("acl: invalid %s schema: %v", name, err))
	}

	return &schemaStrategy{name: name, schema: compiled, extract: extract}
}

type bestFlightsResponse struct {
	BestFlights []struct {
		Price   float64 `json:"price"`
		Flights []struct {
			Airline string `json:"airline"`
		} `json:"flights"`
	} `json:"best_flights"`
}

type priceInsightsResponse struct {
	PriceInsights struct {
		LowestPrice float64 `json:"lowest_price"`
	} `json:"price_insights"`
}

var (
	bestFlightsStrategy = mustSchemaStrategy(StrategyBestFlights, bestFlightsSchema, func(body []byte) (fare, error) {
		var resp bestFlightsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fare{}, err
		}

		best := resp.BestFlights[0]
		f := fare{Price: best.Price}
		if len(best.Flights) > 0 {
			f.Airline = best.Flights[0].Airline
		}

		return f, nil
	})

	priceInsightsStrategy = mustSchemaStrategy(StrategyPriceInsights, priceInsightsSchema, func(body []byte) (fare, error) {
		var resp priceInsightsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fare{}, err
		}

		return fare{Price: resp.PriceInsights.LowestPrice}, nil
	})
)

// StrategiesFor returns the ordered strategies for a pricing.parse_strategy value.
func StrategiesFor(mode string) ([]ParseStrategy, error) {
	switch mode {
	case StrategyAuto, "":
		return []ParseStrategy{bestFlightsStrategy, priceInsightsStrategy}, nil
	case StrategyBestFlights:
		return []ParseStrategy{bestFlightsStrategy}, nil
	case StrategyPriceInsights:
		return []ParseStrategy{priceInsightsStrategy}, nil
	default:
		return nil, fmt.Errorf("unknown parse strategy %q", mode)
	}
}

func strategyNames(strategies []ParseStrategy) string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}

	return strings.Join(names, ", ")
}
