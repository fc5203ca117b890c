package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gamedb/igdb-proxy/pkg/auth"
	"github.com/gamedb/igdb-proxy/pkg/cache"
)

// Prometheus metrics for the proxy pipeline.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "igdb_requests_total",
		Help: "Total proxied requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "igdb_request_duration_seconds",
		Help:    "Proxied request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "igdb_errors_total",
		Help: "Total pipeline errors by class",
	}, []string{"class"})

	unauthorizedRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "igdb_unauthorized_retries_total",
		Help: "Total reactive retries triggered by a backend 401",
	})
)

// Client is the public entry to the proxy pipeline: the edge cache adapter
// wrapped around the authenticated retry coordinator.
type Client struct {
	coordinator *Coordinator
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis client for the edge response cache
	Redis *redis.Client

	// Twitch application credentials (never logged)
	ClientID     string
	ClientSecret string

	// TokenURL and BackendURL override the provider endpoints.
	// Internal/testing only; zero values select the production endpoints.
	TokenURL   string
	BackendURL string

	// HTTPClient overrides the outbound HTTP client (testing).
	HTTPClient *http.Client
}

// New creates a proxy client. Missing credentials or Redis are configuration
// errors and fatal at startup.
func New(cfg Config) (*Client, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	logger := log.With().Str("component", "igdb-proxy").Logger()

	var acquirerOpts []auth.AcquirerOption
	if cfg.TokenURL != "" {
		acquirerOpts = append(acquirerOpts, auth.WithTokenURL(cfg.TokenURL))
	}
	if cfg.HTTPClient != nil {
		acquirerOpts = append(acquirerOpts, auth.WithHTTPClient(cfg.HTTPClient))
	}
	acquirer := auth.NewAcquirer(cfg.ClientID, cfg.ClientSecret, acquirerOpts...)

	var forwarderOpts []ForwarderOption
	if cfg.BackendURL != "" {
		forwarderOpts = append(forwarderOpts, WithBackendURL(cfg.BackendURL))
	}
	if cfg.HTTPClient != nil {
		forwarderOpts = append(forwarderOpts, WithForwarderHTTPClient(cfg.HTTPClient))
	}
	forwarder := NewForwarder(cfg.ClientID, forwarderOpts...)

	return &Client{
		coordinator: NewCoordinator(auth.NewStore(), acquirer, forwarder),
		cache:       cache.NewManager(cfg.Redis),
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do runs one inbound request through the full pipeline: edge cache lookup,
// authenticated forward, and write-through of successful responses.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(req.Endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var key cache.Key
	if req.Cacheable() {
		key = cache.NewKey(req.Method, req.Endpoint, req.Body)

		entry, err := c.cache.Get(ctx, key)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", req.Endpoint).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().Str("endpoint", req.Endpoint).Msg("Serving response from cache")
			requestsTotal.WithLabelValues(req.Endpoint, "cache_hit").Inc()
			return &Response{
				StatusCode:  entry.StatusCode,
				Body:        entry.Body,
				ContentType: entry.ContentType,
				Cached:      true,
			}, nil
		}
	}

	resp, err := c.coordinator.Execute(ctx, req)
	if err != nil {
		class := Classify(err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(req.Endpoint, string(class)).Inc()
		return nil, err
	}

	requestsTotal.WithLabelValues(req.Endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	// Only successful reads are stored. The write is fire-and-forget: it
	// must not delay the response and its failure must not fail the request.
	if req.Cacheable() && resp.StatusCode == http.StatusOK {
		go c.storeResponse(key, resp)
	}

	return resp, nil
}

// storeResponse writes a response snapshot to the edge cache. Runs detached
// from the request context, which may already be done.
func (c *Client) storeResponse(key cache.Key, resp *Response) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := cache.NewEntry(resp.StatusCode, resp.ContentType, resp.Body)
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
		return
	}

	c.logger.Debug().
		Str("key", key.String()).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}
