package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts reads served from Redis.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_cache_hits_total",
			Help: "Total number of cache hits by key",
		},
		[]string{"key"},
	)

	// CacheMisses counts reads that found no entry.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_cache_misses_total",
			Help: "Total number of cache misses by key",
		},
		[]string{"key"},
	)

	// CacheInvalidations counts explicit deletes.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_cache_invalidations_total",
			Help: "Total number of explicit cache invalidations by key",
		},
		[]string{"key"},
	)

	// CachePayloadBytes tracks the size of the last value written per key.
	CachePayloadBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookreview_cache_payload_bytes",
			Help: "Size in bytes of the last payload stored per key",
		},
		[]string{"key"},
	)

	// CacheErrors tracks failed Redis operations.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreview_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
