// Package cache provides an optional Redis-backed cache for fetched API pages.
//
// The cache stores raw JSON response bodies keyed by request URL with a fixed,
// configurable TTL. It lets repeated export runs against slow or quota-limited
// APIs skip pages that were fetched recently.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager with a 5 minute TTL
//	manager := cache.NewManager(redisClient, 5*time.Minute)
//
//	// Build a key from the request URL
//	key := cache.Key("https://api.example.com/products?limit=20&skip=0")
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the API and store the body
//	}
//
// Cache failures are never fatal: callers fall back to a direct request and
// log the error. The fetch client uses this package transparently when a
// Redis client is configured.
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - pagestream_cache_hits_total{layer="redis"} - Cache hits
//   - pagestream_cache_misses_total - Cache misses
//   - pagestream_cache_errors_total{operation} - Cache operation errors
package cache
