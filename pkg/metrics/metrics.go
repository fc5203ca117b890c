// Package metrics provides the central Prometheus registry reference for the
// proxy. Metrics are defined in the package that owns the behavior (proxy,
// cache, auth) to maintain modularity and avoid circular dependencies.
//
// This package documents the full metric surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/proxy):
//   - igdb_requests_total{endpoint, status} (Counter): Proxied requests by
//     endpoint and outcome; status is the HTTP code, "cache_hit", or an
//     error class
//   - igdb_request_duration_seconds{endpoint} (Histogram): End-to-end
//     pipeline duration, cache hits included
//   - igdb_errors_total{class} (Counter): Pipeline errors by class
//     (auth_provider, backend_network, internal)
//   - igdb_unauthorized_retries_total (Counter): Reactive retries triggered
//     by a backend 401
//
// Token Metrics (pkg/auth):
//   - igdb_token_acquisitions_total{outcome} (Counter): Token exchanges by
//     outcome (success, provider_error, network_error, malformed_response)
//
// Cache Metrics (pkg/cache):
//   - igdb_cache_hits_total{layer="redis"} (Counter): Edge cache hits
//   - igdb_cache_misses_total (Counter): Edge cache misses
//   - igdb_cache_size_bytes{layer="redis"} (Gauge): Bytes written to cache
//   - igdb_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(igdb_cache_hits_total[5m])) /
//   (sum(rate(igdb_cache_hits_total[5m])) + sum(rate(igdb_cache_misses_total[5m])))
//
//   # Token refresh churn (should stay near one per freshness window)
//   rate(igdb_token_acquisitions_total{outcome="success"}[1h])
//
//   # Reactive retry rate
//   rate(igdb_unauthorized_retries_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(igdb_request_duration_seconds_bucket[5m]))
