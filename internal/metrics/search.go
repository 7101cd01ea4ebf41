package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and feed Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlf",
			Name:      "search_requests_total",
			Help:      "Total number of backend search executions",
		},
		[]string{"mode", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Name:      "search_duration_seconds",
			Help:      "Backend search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Name:      "search_hits",
			Help:      "Number of hits matched per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"mode"},
	)

	FeedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlf",
			Name:      "feed_items_total",
			Help:      "Total number of feed items rendered",
		},
		[]string{"library"},
	)
)

var registerOnce sync.Once

// Register adds all dlf metrics to the default registry. Called from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpResponseSize,
			httpInFlight,
			SearchRequestsTotal,
			SearchDuration,
			SearchHits,
			FeedItemsTotal,
		)
	})
}
