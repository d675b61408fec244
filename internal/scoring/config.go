// Package scoring turns verified actions into point awards across
// time-windowed leaderboards, with one-time achievements, daily limits and
// streak tracking.
package scoring

import "math"

// Kind identifies an awardable action. Unknown kinds are a programming
// error, not a runtime condition.
type Kind string

const (
	// Primary actions, credited by the post-settlement pipeline.
	KindTrade     Kind = "trade"
	KindCopyTrade Kind = "copy_trade"
	// KindCopySource credits the trader whose position was copied.
	KindCopySource Kind = "copy_source"

	// One-time firsts.
	KindFirstTrade     Kind = "first_trade"
	KindFirstCopyTrade Kind = "first_copy_trade"

	// Daily engagement bonus, at most once per UTC day.
	KindDailyActive Kind = "daily_active"

	// Streak milestones.
	KindStreak3  Kind = "streak_3"
	KindStreak7  Kind = "streak_7"
	KindStreak30 Kind = "streak_30"

	// Cumulative volume milestones.
	KindVolume10K  Kind = "volume_10k"
	KindVolume100K Kind = "volume_100k"
	KindVolume1M   Kind = "volume_1m"

	// Cumulative profit milestones.
	KindProfit1K  Kind = "profit_1k"
	KindProfit10K Kind = "profit_10k"
)

// Metadata value keys recognized by multipliers and accumulators.
const (
	ValueVolumeUSD = "volume_usd"
	ValueProfitUSD = "profit_usd"
)

// Leaderboard categories.
const (
	CategoryTrading    = "trading"
	CategorySocial     = "social"
	CategoryMilestones = "milestones"
	CategoryEngagement = "engagement"
)

// Tier maps a metric threshold to a multiplier factor. Tiers are listed in
// descending Min order; the first tier at or below the value wins.
type Tier struct {
	Min    float64
	Factor float64
}

// Multiplier is a monotone step function over one numeric metadata key.
// A missing key contributes factor 1.0.
type Multiplier struct {
	Key   string
	Tiers []Tier
}

// Factor returns the multiplier factor for the given value.
func (m Multiplier) Factor(value float64) float64 {
	for _, tier := range m.Tiers {
		if value >= tier.Min {
			return tier.Factor
		}
	}
	return 1.0
}

// ActionConfig declares how one action kind is scored and limited.
type ActionConfig struct {
	Base             int64
	Category         string
	OneTime          bool
	DailyLimit       int64 // 0 means unlimited
	StreakQualifying bool
	Multipliers      []Multiplier
}

// Score computes round(base * product of applicable multiplier factors).
func (c ActionConfig) Score(values map[string]float64) int64 {
	factor := 1.0
	for _, mult := range c.Multipliers {
		value, ok := values[mult.Key]
		if !ok {
			continue
		}
		factor *= mult.Factor(value)
	}
	return int64(math.Round(float64(c.Base) * factor))
}

// Config is the static scoring table consumed by the Manager.
type Config map[Kind]ActionConfig

// volumeTiers is the shared USD-volume multiplier ladder.
var volumeTiers = []Tier{
	{Min: 10000, Factor: 5.0},
	{Min: 5000, Factor: 3.0},
	{Min: 1000, Factor: 2.0},
	{Min: 100, Factor: 1.5},
}

// DefaultConfig returns the production scoring table.
func DefaultConfig() Config {
	volumeMultiplier := Multiplier{Key: ValueVolumeUSD, Tiers: volumeTiers}

	return Config{
		KindTrade: {
			Base:             10,
			Category:         CategoryTrading,
			StreakQualifying: true,
			Multipliers:      []Multiplier{volumeMultiplier},
		},
		KindCopyTrade: {
			Base:             12,
			Category:         CategoryTrading,
			StreakQualifying: true,
			Multipliers:      []Multiplier{volumeMultiplier},
		},
		KindCopySource: {
			Base:        5,
			Category:    CategorySocial,
			Multipliers: []Multiplier{volumeMultiplier},
		},

		KindFirstTrade:     {Base: 100, Category: CategoryMilestones, OneTime: true},
		KindFirstCopyTrade: {Base: 50, Category: CategoryMilestones, OneTime: true},

		KindDailyActive: {Base: 20, Category: CategoryEngagement, DailyLimit: 1},

		KindStreak3:  {Base: 50, Category: CategoryMilestones, OneTime: true},
		KindStreak7:  {Base: 150, Category: CategoryMilestones, OneTime: true},
		KindStreak30: {Base: 1000, Category: CategoryMilestones, OneTime: true},

		KindVolume10K:  {Base: 200, Category: CategoryMilestones, OneTime: true},
		KindVolume100K: {Base: 1000, Category: CategoryMilestones, OneTime: true},
		KindVolume1M:   {Base: 5000, Category: CategoryMilestones, OneTime: true},

		KindProfit1K:  {Base: 100, Category: CategoryMilestones, OneTime: true},
		KindProfit10K: {Base: 500, Category: CategoryMilestones, OneTime: true},
	}
}
