package proxy

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/gamedb/igdb-proxy/pkg/auth"
)

// Coordinator orchestrates token store, token acquirer and forwarder:
// obtain a fresh token, forward, and on a 401 discard the token and retry
// exactly once with a newly acquired one.
//
// The pre-emptive freshness check avoids most round-trip-wasting 401s; the
// single reactive retry covers the residual race (token revoked early, clock
// skew, invalidation by a sibling instance). A second 401 surfaces to the
// caller as-is: more retries would mask a persistent credential
// misconfiguration as transient.
type Coordinator struct {
	store     *auth.Store
	acquirer  *auth.Acquirer
	forwarder *Forwarder
	group     singleflight.Group
	logger    zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewCoordinator creates a Coordinator over the given collaborators.
func NewCoordinator(store *auth.Store, acquirer *auth.Acquirer, forwarder *Forwarder) *Coordinator {
	return &Coordinator{
		store:     store,
		acquirer:  acquirer,
		forwarder: forwarder,
		logger:    log.With().Str("component", "coordinator").Logger(),
		now:       time.Now,
	}
}

// Execute runs the authenticated pipeline for one request.
//
// Transport failures while forwarding are never retried here: only the
// specific 401 condition triggers the one retry.
func (c *Coordinator) Execute(ctx context.Context, req Request) (*Response, error) {
	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.forwarder.Forward(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Token rejected by the resource server, possibly inside the freshness
	// window. Discard it and retry once with a brand-new token.
	unauthorizedRetriesTotal.Inc()
	c.logger.Warn().
		Str("endpoint", req.Endpoint).
		Msg("Backend rejected token, re-acquiring and retrying once")

	c.store.Clear()

	token, err = c.refresh(ctx)
	if err != nil {
		return nil, err
	}

	// The second response is returned whatever its status.
	return c.forwarder.Forward(ctx, req, token)
}

// currentToken returns the stored token when fresh, acquiring a new one
// otherwise. The store itself does no freshness checking.
func (c *Coordinator) currentToken(ctx context.Context) (auth.Token, error) {
	if token, ok := c.store.Get(); ok && token.Fresh(c.now()) {
		return token, nil
	}
	return c.refresh(ctx)
}

// refresh unconditionally acquires a new token and stores it. Concurrent
// refreshes collapse into a single acquisition: every valid token is
// individually usable, so all waiters share the winner's result.
func (c *Coordinator) refresh(ctx context.Context) (auth.Token, error) {
	result, err, _ := c.group.Do("token", func() (interface{}, error) {
		token, err := c.acquirer.Acquire(ctx)
		if err != nil {
			return auth.Token{}, err
		}
		c.store.Set(token)
		return token, nil
	})
	if err != nil {
		return auth.Token{}, err
	}
	return result.(auth.Token), nil
}
