package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a cached proxy response.
//
// IGDB reads carry their query in the request body (Apicalypse), so two
// logically different queries share the same URL. The body hash is therefore
// part of the key: keying by URL alone would serve one query's result for
// another.
type Key struct {
	// Endpoint is the backend endpoint path (e.g. "games").
	Endpoint string

	// Method is the HTTP method of the inbound request.
	Method string

	// BodyHash is the xxhash of the raw request body, 0 for an empty body.
	BodyHash uint64
}

// NewKey derives the cache key for a request.
func NewKey(method, endpoint string, body []byte) Key {
	k := Key{
		Endpoint: strings.Trim(endpoint, "/"),
		Method:   strings.ToUpper(method),
	}
	if len(body) > 0 {
		k.BodyHash = xxhash.Sum64(body)
	}
	return k
}

// String generates a deterministic cache key string.
// Format: igdb:METHOD:endpoint:bodyhash
//
// Example:
//
//	igdb:POST:games:f46ae01657e4d6a5
func (k Key) String() string {
	return fmt.Sprintf("igdb:%s:%s:%016x", k.Method, k.Endpoint, k.BodyHash)
}
