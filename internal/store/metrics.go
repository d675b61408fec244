package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesTotal tracks committed atomic batches.
	BatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_store_batches_total",
		Help: "Total number of atomic batches committed",
	})

	// BatchOpsTotal tracks individual operations inside committed batches.
	BatchOpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_store_batch_ops_total",
		Help: "Total number of operations committed inside batches",
	})

	// BatchErrorsTotal tracks failed batch executions.
	BatchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_store_batch_errors_total",
		Help: "Total number of batch executions that failed",
	})

	// BatchDurationSeconds tracks batch round-trip latency.
	BatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradeboard_store_batch_duration_seconds",
		Help:    "Duration of atomic batch execution",
		Buckets: prometheus.DefBuckets,
	})
)
