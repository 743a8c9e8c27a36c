// Package metrics holds the HTTP request metrics and the Prometheus
// exposition handler for the bookreview API.
//
// Component metrics live next to the code that updates them and register
// themselves through promauto on the default registry:
//
//   - http_request_duration_seconds{method, route, code} (this package)
//   - bookreview_cache_hits_total{key}, bookreview_cache_misses_total{key},
//     bookreview_cache_invalidations_total{key}, bookreview_cache_payload_bytes{key},
//     bookreview_cache_errors_total{operation} (pkg/cache)
//   - bookreview_store_operation_duration_seconds{operation, outcome} (pkg/store)
//   - bookreview_reviews_created_total (pkg/review)
//
// The default registry also carries the Go runtime and process collectors.
//
// Example queries:
//
//	# Book list cache hit rate
//	sum(rate(bookreview_cache_hits_total{key="books:list"}[5m])) /
//	(sum(rate(bookreview_cache_hits_total{key="books:list"}[5m])) +
//	 sum(rate(bookreview_cache_misses_total{key="books:list"}[5m])))
//
//	# P95 latency per route
//	histogram_quantile(0.95, sum by (le, route) (rate(http_request_duration_seconds_bucket[5m])))
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequestDuration records every business request, labelled with the
// route template rather than the concrete path.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "http_request_duration_seconds",
	Help:    "Duration of HTTP requests in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "code"})

// ObserveRequest records one finished request.
func ObserveRequest(method, route string, code int, elapsed time.Duration) {
	HTTPRequestDuration.
		WithLabelValues(method, route, strconv.Itoa(code)).
		Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
