// Package telemetry registers the prometheus counters and histograms
// named in SPEC_FULL.md's metrics addition to spec.md §9. No HTTP
// endpoint is served by this module; the registry is exposed for an
// embedding host process to scrape if it chooses to.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every registered counter/histogram. The orchestrator
// records IndexRunsTotal and ChunksIndexedTotal; nothing in this module
// records SearchQueriesTotal or SearchDuration.
type Metrics struct {
	IndexRunsTotal     *prometheus.CounterVec
	SearchQueriesTotal prometheus.Counter
	SearchDuration     prometheus.Histogram
	ChunksIndexedTotal prometheus.Counter
}

// New registers metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics on reg, so tests can use a fresh
// prometheus.Registry instead of the global default.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IndexRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codii_index_runs_total",
			Help: "Total number of index_codebase runs by outcome.",
		}, []string{"result"}),
		SearchQueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "codii_search_queries_total",
			Help: "Total number of search_code calls.",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "codii_search_duration_seconds",
			Help:    "search_code latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ChunksIndexedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "codii_chunks_indexed_total",
			Help: "Total number of chunks inserted across all indexing runs.",
		}),
	}
}
