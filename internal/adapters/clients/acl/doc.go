// Package acl translates downstream API payloads into domain types.
//
// Nothing outside this package sees a SerpApi or SendGrid DTO. Every failure
// leaves as a domain error:
//
//   - transport errors, timeouts and 5xx responses → [domain.ErrUnavailable]
//   - 4xx responses → [domain.ErrUnavailable], carrying the API's own message
//   - 2xx bodies that no parse strategy understands → [domain.ErrMalformed]
//
// [FareClient] wraps the above in a [domain.FetchError] so a poll cycle always
// receives a single error kind with a human-readable cause.
//
// Response shapes are matched with JSON Schema before decoding. Each
// [ParseStrategy] owns one schema; strategies run in order and the first
// match wins.
package acl
