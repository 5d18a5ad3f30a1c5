package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "search_requests_total",
			Help:      "Total number of browse/search requests",
		},
		[]string{"mode", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "search_request_duration_seconds",
			Help:      "Browse/search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "search_candidates",
			Help:      "Entities left after filtering",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "search_results",
			Help:      "Entities in the ranked or ordered result set",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"mode"},
	)

	HierarchyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "hierarchy_errors_total",
			Help:      "Malformed category hierarchies encountered",
		},
		[]string{"reason"}, // "cycle" / "dangling"
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "store_operation_duration_seconds",
			Help:      "Entity store operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"driver", "op"},
	)
)

var searchOnce sync.Once

// RegisterSearchMetrics registers Prometheus search metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	searchOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchRequestDuration,
			SearchCandidates,
			SearchResults,
			HierarchyErrorsTotal,
			StoreOperationDuration,
		)
	})
}
