// Package proxy implements the authenticated request pipeline: forwarding
// inbound requests to the IGDB API with a managed bearer token, a single
// reactive retry on 401, and read-through edge caching.
package proxy

import (
	"net/http"
)

// Request is one inbound call mapped onto a backend request.
type Request struct {
	// Endpoint is the backend endpoint path, e.g. "games".
	Endpoint string

	// Method is the inbound HTTP method, passed through to the backend.
	Method string

	// Body is the raw request body. IGDB queries travel here in Apicalypse
	// syntax; empty for bodiless methods.
	Body []byte
}

// Cacheable reports whether the request has read semantics and its response
// may be reused. IGDB reads are issued as GET or as POST carrying an
// Apicalypse query body.
func (r Request) Cacheable() bool {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
		return true
	default:
		return false
	}
}

// Response is the outcome of one pipeline invocation. Backend-reported
// failures (non-200 statuses) are ordinary responses, not errors: they pass
// through to the caller verbatim.
type Response struct {
	// StatusCode is the backend's HTTP status.
	StatusCode int

	// Body is the backend body, unmodified.
	Body []byte

	// ContentType is the backend's content type.
	ContentType string

	// Cached is true when the response was served from the edge cache.
	Cached bool
}
