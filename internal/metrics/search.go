package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and UI Prometheus metrics.
var (
	MatcherDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matcher_duration_seconds",
			Help:      "Time a matcher spent on one query",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"matcher"},
	)

	MatcherErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matcher_errors_total",
			Help:      "Matcher searches that failed",
		},
		[]string{"matcher"},
	)

	// SearchResultsTotal counts searches by the matcher whose results were served.
	// "none" means every matcher came back empty.
	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Searches by winning matcher",
		},
		[]string{"matcher"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ui_renders_total",
			Help:      "Search page submissions by outcome",
		},
		[]string{"outcome"}, // "results" / "empty" / "failed" / "stale"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search and UI metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		MatcherDuration,
		MatcherErrorsTotal,
		SearchResultsTotal,
		SearchCacheTotal,
		RendersTotal,
	)
	searchMetricsRegistered = true
}
