package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal tracks submissions by terminal outcome.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_settlement_submissions_total",
			Help: "Total number of tracked submissions by terminal status",
		},
		[]string{"status"},
	)

	// PollCyclesTotal tracks status poll cycles across all submissions.
	PollCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_settlement_poll_cycles_total",
		Help: "Total number of status poll cycles",
	})

	// PollErrorsTotal tracks transient status-query errors.
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_settlement_poll_errors_total",
		Help: "Total number of transient status query errors",
	})

	// SettleDurationSeconds tracks submission-to-terminal-outcome latency.
	SettleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradeboard_settlement_duration_seconds",
		Help:    "Duration from submission to terminal settlement outcome",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
