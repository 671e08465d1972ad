package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "searches_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "outcome"}, // outcome: "ok" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synapse",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	AnalyzerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "analyzer_requests_total",
			Help:      "Total query analyzer requests",
		},
		[]string{"status"}, // "ok" / "error"
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synapse",
			Name:      "search_fallbacks_total",
			Help:      "Smart searches degraded to a single hybrid call",
		},
		[]string{"reason"}, // "analyzer" / "retrieval"
	)

	SmartTermsPerQuery = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "synapse",
			Name:      "smart_terms_per_query",
			Help:      "Number of analyzer terms per smart search",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(AnalyzerRequestsTotal)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(SmartTermsPerQuery)
	searchMetricsRegistered = true
}
