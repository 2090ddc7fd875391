// Package domain contains core business entities and rules.
package domain

import (
	"strconv"
	"time"
)

// NoLink is reported when the search response carries no deep link.
const NoLink = "No link"

// DateLayout is the wire format of travel dates.
const DateLayout = "2006-01-02"

// Route is the fixed itinerary being watched.
type Route struct {
	// Origin is the departure airport code (e.g. "PNQ").
	Origin string

	// OriginName is the human-readable departure city.
	OriginName string

	// Destination is the arrival airport code (e.g. "VNS").
	Destination string

	// DestinationName is the human-readable arrival city.
	DestinationName string

	// Date is the outbound travel date.
	Date time.Time

	// Stops is the stop-count filter; 0 means nonstop only.
	Stops int

	// Currency is the ISO 4217 currency code prices are quoted in.
	Currency string

	// CurrencySymbol is prefixed to prices in notifications.
	CurrencySymbol string

	// Locale is the language code sent to the search API.
	Locale string
}

// Description returns the route as shown in notification subjects,
// e.g. "Pune → Varanasi (15 Dec 2025)".
func (r Route) Description() string {
	return r.OriginName + " → " + r.DestinationName + " (" + r.Date.Format("02 Jan 2006") + ")"
}

// FlightQuote is the cheapest fare observed in one poll cycle.
type FlightQuote struct {
	// Airline is empty when the response shape does not carry one.
	Airline string

	// Price is expressed in Currency.
	Price float64

	// Currency is the ISO 4217 code of Price.
	Currency string

	// Link is a deep link to the search results, or NoLink.
	Link string
}

// HasAirline reports whether the quote names an airline.
func (q *FlightQuote) HasAirline() bool {
	return q.Airline != ""
}

// FormatPrice renders the price with the given symbol and no grouping,
// e.g. "₹4200" or "₹3899.5".
func (q *FlightQuote) FormatPrice(symbol string) string {
	return symbol + strconv.FormatFloat(q.Price, 'f', -1, 64)
}
