package proxy

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedb/igdb-proxy/internal/testutil"
	"github.com/gamedb/igdb-proxy/pkg/auth"
)

type coordinatorFixture struct {
	coordinator *Coordinator
	store       *auth.Store
	identity    *testutil.MockIdentity
	backend     *testutil.MockBackend
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()

	identity := testutil.NewMockIdentity()
	t.Cleanup(identity.Close)

	backend := testutil.NewMockBackend()
	t.Cleanup(backend.Close)

	store := auth.NewStore()
	acquirer := auth.NewAcquirer("id", "secret", auth.WithTokenURL(identity.URL()))
	forwarder := NewForwarder("id", WithBackendURL(backend.URL()))

	return &coordinatorFixture{
		coordinator: NewCoordinator(store, acquirer, forwarder),
		store:       store,
		identity:    identity,
		backend:     backend,
	}
}

func TestCoordinator_FreshTokenReuse(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	req := Request{Endpoint: "games", Method: http.MethodPost, Body: []byte("fields name;")}

	for i := 0; i < 5; i++ {
		resp, err := f.coordinator.Execute(ctx, req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 1, f.identity.GetAcquisitionCount(),
		"acquirer must be invoked at most once within the freshness window")
	assert.Equal(t, 5, f.backend.GetRequestCount())
}

func TestCoordinator_StaleTokenRefreshed(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	// Seed a token acquired beyond the freshness window.
	f.store.Set(auth.Token{
		Value:      "stale",
		AcquiredAt: time.Now().Add(-auth.FreshnessTTL - time.Minute),
	})

	_, err := f.coordinator.Execute(ctx, Request{Endpoint: "games", Method: http.MethodPost})
	require.NoError(t, err)

	assert.Equal(t, 1, f.identity.GetAcquisitionCount())
	assert.Equal(t, "Bearer tok1", f.backend.GetLastAuthorization(),
		"stale token must be replaced before forwarding")
}

func TestCoordinator_UnauthorizedTriggersSingleRetry(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	var mu sync.Mutex
	var authsSeen []string
	f.backend.SetHandler("/games", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authsSeen = append(authsSeen, r.Header.Get("Authorization"))
		first := len(authsSeen) == 1
		mu.Unlock()

		if first {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"id":1}]`))
	})

	// Held token present and fresh, but rejected by the backend.
	f.store.Set(auth.Token{Value: "revoked", AcquiredAt: time.Now()})

	req := Request{Endpoint: "games", Method: http.MethodPost, Body: []byte("fields name; limit 5;")}

	resp, err := f.coordinator.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"id":1}]`, string(resp.Body))
	assert.Equal(t, 1, f.identity.GetAcquisitionCount(), "exactly one re-acquisition")
	assert.Equal(t, []string{"Bearer revoked", "Bearer tok1"}, authsSeen)
	assert.Equal(t, "fields name; limit 5;", string(f.backend.LastRequestBody),
		"retry must carry the same body")
}

func TestCoordinator_SecondUnauthorizedSurfaced(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	f.backend.SetResponse("/games", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"invalid token"}`,
	})

	resp, err := f.coordinator.Execute(ctx, Request{Endpoint: "games", Method: http.MethodPost})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, `{"message":"invalid token"}`, string(resp.Body))
	// Initial acquisition plus the one reactive re-acquisition; no third.
	assert.Equal(t, 2, f.identity.GetAcquisitionCount())
	assert.Equal(t, 2, f.backend.GetRequestCount(), "no third forward after a second 401")
}

func TestCoordinator_AcquisitionFailureNoBackendCall(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	f.identity.SetTokenBody(`{"access_token":"  "}`)

	_, err := f.coordinator.Execute(ctx, Request{Endpoint: "games", Method: http.MethodPost})
	require.Error(t, err)

	var provErr *auth.ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, 0, f.backend.GetRequestCount(),
		"no backend call may happen without a usable token")
}

func TestCoordinator_NetworkFailureNotRetried(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	f.backend.Close()

	_, err := f.coordinator.Execute(ctx, Request{Endpoint: "games", Method: http.MethodPost})
	require.Error(t, err)

	var backendErr *BackendUnavailableError
	assert.ErrorAs(t, err, &backendErr)
	assert.Equal(t, 1, f.identity.GetAcquisitionCount(),
		"transport failures must not trigger re-acquisition")
}

func TestCoordinator_ConcurrentRefreshSingleFlight(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	// Slow the exchange down so all refreshes overlap in flight.
	f.identity.SetDelay(100 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coordinator.Execute(ctx, Request{Endpoint: "games", Method: http.MethodPost})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.identity.GetAcquisitionCount(),
		"concurrent refreshes must collapse into one acquisition")
}

func TestCoordinator_NowOverride(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	req := Request{Endpoint: "games", Method: http.MethodPost}

	_, err := f.coordinator.Execute(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, f.identity.GetAcquisitionCount())

	// Jump past the freshness window: the next call must re-acquire.
	f.coordinator.now = func() time.Time {
		return time.Now().Add(auth.FreshnessTTL + time.Minute)
	}

	_, err = f.coordinator.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, f.identity.GetAcquisitionCount())
}
