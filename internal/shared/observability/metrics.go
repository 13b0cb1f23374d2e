package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codegraph_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codegraph_phase_seconds",
		Help:    "Time spent in each analysis phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codegraph_graph_nodes_total",
		Help: "Total number of nodes created by the last analysis run.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codegraph_graph_edges_total",
		Help: "Total number of edges created by the last analysis run.",
	})

	FilesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codegraph_files_processed_total",
		Help: "Total number of source files analyzed.",
	})

	FilesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codegraph_files_failed_total",
		Help: "Total number of source files skipped due to read or syntax failures.",
	})

	ResolutionMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codegraph_resolution_misses_total",
		Help: "Total number of project-local references that resolved to no declaration.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codegraph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
