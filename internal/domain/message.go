package domain

import (
	"strings"
	"time"
)

const (
	subjectPrefix = "[Flight Update] "

	// subjectTimeLayout renders the local send time, e.g. "14:05 15-Dec".
	subjectTimeLayout = "15:04 02-Jan"

	fetchErrorPrefix = "Error fetching flight: "
)

// NotificationMessage is the email produced by one poll cycle.
type NotificationMessage struct {
	Subject string
	Body    string
}

// NewNotificationMessage builds the message for a cycle outcome.
// Exactly one of quote or fetchErr is expected to be set; a nil quote
// with a nil error is reported as an unknown fetch failure.
func NewNotificationMessage(route Route, sentAt time.Time, quote *FlightQuote, fetchErr error) NotificationMessage {
	var body string

	switch {
	case fetchErr != nil:
		body = FormatFetchError(fetchErr)
	case quote != nil:
		body = FormatQuote(quote, route.CurrencySymbol)
	default:
		body = FormatFetchError(NewFetchError(nil))
	}

	return NotificationMessage{
		Subject: FormatSubject(route, sentAt),
		Body:    body,
	}
}

// FormatSubject returns the subject line for a message sent at sentAt.
func FormatSubject(route Route, sentAt time.Time) string {
	return subjectPrefix + route.Description() + " - " + sentAt.Format(subjectTimeLayout)
}

// FormatQuote renders a quote as the plain-text notification body.
// The airline line is omitted when the quote has no airline.
func FormatQuote(q *FlightQuote, symbol string) string {
	var b strings.Builder

	b.WriteString("Cheapest nonstop flight:\n")
	if q.HasAirline() {
		b.WriteString("Airline: " + q.Airline + "\n")
	}
	b.WriteString("Price: " + q.FormatPrice(symbol) + "\n")

	link := q.Link
	if link == "" {
		link = NoLink
	}
	b.WriteString("Link: " + link)

	return b.String()
}

// FormatFetchError renders a fetch failure as the notification body.
func FormatFetchError(err error) string {
	return fetchErrorPrefix + err.Error()
}
