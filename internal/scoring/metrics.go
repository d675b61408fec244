package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AwardsTotal tracks committed awards by action kind.
	AwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_scoring_awards_total",
			Help: "Total number of score awards committed",
		},
		[]string{"kind"},
	)

	// PointsAwardedTotal tracks cumulative points by action kind.
	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_scoring_points_total",
			Help: "Cumulative points awarded",
		},
		[]string{"kind"},
	)

	// GuardRejectionsTotal tracks awards short-circuited by a guard.
	GuardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_scoring_guard_rejections_total",
			Help: "Total number of award attempts rejected by a guard",
		},
		[]string{"guard"},
	)

	// StreaksStartedTotal tracks first-ever qualifying actions.
	StreaksStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_scoring_streaks_started_total",
		Help: "Total number of streaks started",
	})

	// StreaksBrokenTotal tracks streak resets after a gap.
	StreaksBrokenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_scoring_streaks_broken_total",
		Help: "Total number of streaks broken by a missed day",
	})

	// FeedDroppedTotal tracks award feed messages dropped on a full buffer.
	FeedDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_scoring_feed_dropped_total",
		Help: "Total number of award feed messages dropped",
	})
)
