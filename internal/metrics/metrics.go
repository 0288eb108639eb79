// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docserve"

// Document and search metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"surface"},
	)

	SearchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Hits returned per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		},
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_index_rebuilds_total",
			Help:      "Number of in-memory search index rebuilds",
		},
	)

	RenderFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Documents that failed to render",
		},
	)

	DocumentsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_served_total",
			Help:      "Documents served, by result",
		},
		[]string{"result"}, // "ok" / "not_found" / "error"
	)
)

func init() {
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchHits)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(RenderFailuresTotal)
	prometheus.MustRegister(DocumentsServedTotal)
}
