package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_fetch_total",
		Help: "Total orchestrated fetches by keyspace and outcome",
	}, []string{"keyspace", "outcome"}) // "hit", "miss", "stale", "error"

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_fetch_retries_total",
		Help: "Total upstream retry attempts by keyspace",
	}, []string{"keyspace"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_fetch_retry_exhausted_total",
		Help: "Total fetches that exhausted all retry attempts by keyspace",
	}, []string{"keyspace"})

	staleFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_stale_fallbacks_total",
		Help: "Total fetches served from a stale cache entry after upstream failure",
	}, []string{"keyspace"})
)
