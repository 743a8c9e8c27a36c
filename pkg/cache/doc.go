// Package cache provides the Redis-backed key/value layer used to memoize
// the book list response.
//
// Values are stored as raw bytes under a namespaced key with a fixed expiry.
// Redis owns expiry: an entry past its TTL is simply gone and reads report
// ErrCacheMiss. There is no stampede protection; concurrent misses may each
// repopulate the same key.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient)
//
//	entry, err := manager.Get(ctx, cache.BookListKey)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// load from the store, then
//		_ = manager.Set(ctx, cache.BookListKey, payload, 30*time.Second)
//	}
//
//	// after a mutation
//	_ = manager.Delete(ctx, cache.BookListKey)
//
// # Metrics
//
//   - bookreview_cache_hits_total{key}
//   - bookreview_cache_misses_total{key}
//   - bookreview_cache_invalidations_total{key}
//   - bookreview_cache_errors_total{operation}
//   - bookreview_cache_payload_bytes{key}
package cache
