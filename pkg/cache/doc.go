// Package cache provides the showcase payload cache with two interchangeable
// backends: an in-process map store and a Redis store.
//
// Both backends expose the same Store interface, so the fetch layer is
// agnostic to which one is configured. Entries are retained past their
// freshness deadline so the fetch layer can fall back to stale data when an
// upstream refresh fails: Get returns stale entries too, and callers decide
// with Entry.Fresh.
//
// # Basic Usage
//
//	store := cache.NewMemory()
//
//	// Store a payload fresh for five minutes
//	if err := store.Set(ctx, "gi:800000000", payload, 5*time.Minute); err != nil {
//		return err
//	}
//
//	entry, err := store.Get(ctx, "gi:800000000")
//	if err == cache.ErrCacheMiss {
//		// nothing cached - fetch upstream
//	}
//	if entry != nil && !entry.Fresh() {
//		// stale - usable only as a fallback
//	}
//
// # Redis Backend
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	store := cache.NewRedis(redisClient)
//
// The Redis backend keeps entries alive for a retention window beyond their
// freshness TTL so the stale-fallback path keeps working across process
// restarts.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - showcase_cache_hits_total{layer} - Fresh cache hits by backend
//   - showcase_cache_misses_total - Cache misses
//   - showcase_cache_errors_total{operation} - Cache operation errors
package cache
