// Package metrics provides the centralized Prometheus metrics registry for
// the showcase proxy. All metrics are defined in their respective packages
// (cache, fetch, enka, idv) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective
// packages and served on /metrics.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - showcase_cache_hits_total{layer} (Counter): Fresh cache hits by backend (memory, redis)
//   - showcase_cache_misses_total (Counter): Cache misses
//   - showcase_cache_errors_total{operation} (Counter): Cache operation errors (get, set, decode)
//
// Fetch Metrics (pkg/fetch):
//   - showcase_fetch_total{keyspace, outcome} (Counter): Orchestrated fetches by outcome (hit, miss, stale, error)
//   - showcase_fetch_retries_total{keyspace} (Counter): Upstream retry attempts
//   - showcase_fetch_retry_exhausted_total{keyspace} (Counter): Fetches that exhausted all attempts
//   - showcase_stale_fallbacks_total{keyspace} (Counter): Fetches served from stale entries
//
// Upstream Metrics (pkg/enka, pkg/idv):
//   - enka_requests_total{game, status} (Counter): Enka API requests by game and HTTP status
//   - enka_request_duration_seconds{game} (Histogram): Enka API request duration
//   - idv_requests_total{status} (Counter): Identity V role-lookup requests by HTTP status
//   - idv_request_duration_seconds (Histogram): Identity V request duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(showcase_cache_hits_total[5m])) /
//   (sum(rate(showcase_cache_hits_total[5m])) + sum(rate(showcase_cache_misses_total[5m])))
//
//   # Stale Fallback Rate (upstream health signal)
//   rate(showcase_stale_fallbacks_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(enka_request_duration_seconds_bucket[5m]))
