package cache

import (
	"time"
)

// Entry represents a cached API page response.
type Entry struct {
	// Body is the raw JSON response body
	Body []byte `json:"body"`

	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// FetchedAt is when the response was fetched from the API
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the cache entry becomes stale
	Expires time.Time `json:"expires"`
}

// NewEntry creates a cache entry for a response body with the given TTL.
func NewEntry(body []byte, statusCode int, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Body:       body,
		StatusCode: statusCode,
		FetchedAt:  now,
		Expires:    now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
