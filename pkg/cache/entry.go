// Package cache provides edge caching for proxied IGDB responses with a
// Redis backend and deterministic, body-aware cache keys.
package cache

import (
	"time"
)

// DefaultMaxAge is the freshness directive applied to stored responses.
// It matches the Cache-Control max-age the proxy hands to its callers.
const DefaultMaxAge = 300 * time.Second

// Entry is a cached snapshot of a successful backend response.
type Entry struct {
	// Body is the response body bytes, stored verbatim.
	Body []byte `json:"body"`

	// StatusCode is the HTTP status of the cached response. Only 200
	// responses are ever stored, but the code is kept explicit so the read
	// path never has to assume it.
	StatusCode int `json:"status_code"`

	// ContentType is the response content type.
	ContentType string `json:"content_type"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry creates an entry for a response with the default max-age.
func NewEntry(statusCode int, contentType string, body []byte) *Entry {
	now := time.Now()
	return &Entry{
		Body:        body,
		StatusCode:  statusCode,
		ContentType: contentType,
		Expires:     now.Add(DefaultMaxAge),
		CachedAt:    now,
	}
}

// IsExpired returns true if the entry has expired.
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
