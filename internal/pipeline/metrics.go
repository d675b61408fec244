package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HandledTotal tracks pipeline invocations that ran to completion.
	HandledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_pipeline_handled_total",
		Help: "Total number of confirmed settlements processed",
	})

	// ValidationFailuresTotal tracks re-fetched transactions rejected by validation.
	ValidationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_pipeline_validation_failures_total",
		Help: "Total number of confirmed transactions failing validation",
	})

	// IndexerFailuresTotal tracks failed indexer re-fetches.
	IndexerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_pipeline_indexer_failures_total",
		Help: "Total number of failed indexer re-fetches",
	})

	// IdentityFailuresTotal tracks failed identity resolutions.
	IdentityFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_pipeline_identity_failures_total",
		Help: "Total number of failed identity resolutions",
	})

	// ScoringFailuresTotal tracks failed score awards.
	ScoringFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_pipeline_scoring_failures_total",
		Help: "Total number of failed score awards",
	})

	// HandleDurationSeconds tracks pipeline latency per confirmed settlement.
	HandleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradeboard_pipeline_handle_duration_seconds",
		Help:    "Duration of post-settlement pipeline handling",
		Buckets: prometheus.DefBuckets,
	})
)
