// Package cache provides edge caching for IGDB responses with a Redis backend.
//
// The cache manager stores successful (200) responses with the following
// properties:
//
// - Fixed 300 second freshness window, enforced by Redis TTL
// - Deterministic cache keys that include a hash of the request body
// - Prometheus metrics for observability
// - Fire-and-forget writes driven by the caller
//
// # Cache Keys
//
// IGDB reads carry their query in the POST body (Apicalypse syntax), so the
// URL alone cannot identify a response. Keys therefore combine method,
// endpoint and an xxhash of the body:
//
//	key := cache.NewKey("POST", "games", []byte("fields name; limit 5;"))
//	// igdb:POST:games:<bodyhash>
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// miss - forward to the backend
//	}
//
//	// after a successful forward:
//	entry = cache.NewEntry(200, "application/json", body)
//	if err := manager.Set(ctx, key, entry); err != nil {
//		// cache write failures never fail the request
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - igdb_cache_hits_total{layer="redis"} - Cache hits
//   - igdb_cache_misses_total - Cache misses
//   - igdb_cache_size_bytes{layer="redis"} - Bytes written
//   - igdb_cache_errors_total{operation} - Cache operation errors
package cache
