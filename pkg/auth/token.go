// Package auth manages the Twitch app access token used to authenticate
// against the IGDB API: acquisition via the client-credentials grant and
// process-wide storage of the current token.
package auth

import (
	"sync"
	"time"
)

// FreshnessTTL is how long an acquired token is trusted without a refresh.
// Twitch app tokens live around 60 days, but the provider may revoke them
// early; 55 minutes keeps a healthy margin and bounds the damage of a
// revoked token to one reactive retry.
const FreshnessTTL = 55 * time.Minute

// Token is an acquired app access token. Tokens are immutable values;
// a refresh produces a new Token that supersedes the old one in the Store.
type Token struct {
	// Value is the opaque bearer credential.
	Value string

	// AcquiredAt is when the token was obtained from the identity provider.
	AcquiredAt time.Time
}

// Fresh reports whether the token is still inside the freshness window at
// the given instant.
func (t Token) Fresh(now time.Time) bool {
	return now.Sub(t.AcquiredAt) < FreshnessTTL
}

// Store holds at most one current token for the process. It performs no
// freshness checking itself - that is the coordinator's job.
//
// All operations are atomic with respect to each other and never block on
// anything but the mutex.
type Store struct {
	mu      sync.RWMutex
	current *Token
}

// NewStore creates an empty token store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the held token, if any.
func (s *Store) Get() (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Token{}, false
	}
	return *s.current, true
}

// Set replaces the held token.
func (s *Store) Set(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &token
}

// Clear discards the held token. Used when a downstream call proves the
// token invalid.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
