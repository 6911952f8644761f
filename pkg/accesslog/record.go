package accesslog

import "time"

// Record is a single journaled request.
type Record struct {
	// ID is a unique identifier for this journal entry.
	ID string

	// Time is when the request completed.
	Time time.Time

	// RequestID correlates the entry with server logs.
	RequestID string

	// Method is the HTTP method.
	Method string

	// Path is the request path as received, before any rewriting.
	Path string

	// Source is how the request resolved: "local", "proxy", or "miss".
	Source string

	// Status is the HTTP status written to the client.
	Status int

	// ContentType is the Content-Type of the response, empty for misses.
	ContentType string

	// Bytes is the response body size.
	Bytes int

	// Duration is the end-to-end request duration.
	Duration time.Duration

	// Target is the upstream URL for proxied requests and misses, empty
	// for local hits.
	Target string
}
