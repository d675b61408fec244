package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiplier_Factor(t *testing.T) {
	mult := Multiplier{Key: ValueVolumeUSD, Tiers: volumeTiers}

	tests := []struct {
		value float64
		want  float64
	}{
		{value: 0, want: 1.0},
		{value: 99.99, want: 1.0},
		{value: 100, want: 1.5},
		{value: 999, want: 1.5},
		{value: 1000, want: 2.0},
		{value: 5000, want: 3.0},
		{value: 9999, want: 3.0},
		{value: 10000, want: 5.0},
		{value: 1_000_000, want: 5.0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, mult.Factor(tc.value), "value %v", tc.value)
	}
}

func TestActionConfig_Score(t *testing.T) {
	cfg := ActionConfig{
		Base:        10,
		Multipliers: []Multiplier{{Key: ValueVolumeUSD, Tiers: volumeTiers}},
	}

	assert.Equal(t, int64(10), cfg.Score(nil), "missing key contributes 1.0")
	assert.Equal(t, int64(10), cfg.Score(map[string]float64{"unrelated": 9999}))
	assert.Equal(t, int64(15), cfg.Score(map[string]float64{ValueVolumeUSD: 100}))
	assert.Equal(t, int64(50), cfg.Score(map[string]float64{ValueVolumeUSD: 20000}))
}

func TestActionConfig_ScoreRounds(t *testing.T) {
	cfg := ActionConfig{
		Base: 5,
		Multipliers: []Multiplier{
			{Key: ValueVolumeUSD, Tiers: []Tier{{Min: 0, Factor: 1.5}}},
		},
	}
	// 5 * 1.5 = 7.5, rounds half away from zero.
	assert.Equal(t, int64(8), cfg.Score(map[string]float64{ValueVolumeUSD: 1}))
}

func TestActionConfig_ScoreMultipliesFactors(t *testing.T) {
	cfg := ActionConfig{
		Base: 10,
		Multipliers: []Multiplier{
			{Key: ValueVolumeUSD, Tiers: []Tier{{Min: 100, Factor: 2.0}}},
			{Key: ValueProfitUSD, Tiers: []Tier{{Min: 50, Factor: 3.0}}},
		},
	}
	values := map[string]float64{ValueVolumeUSD: 500, ValueProfitUSD: 60}
	assert.Equal(t, int64(60), cfg.Score(values))
}

func TestDefaultConfig_Shape(t *testing.T) {
	cfg := DefaultConfig()

	trade := cfg[KindTrade]
	assert.Equal(t, int64(10), trade.Base)
	assert.True(t, trade.StreakQualifying)
	assert.False(t, trade.OneTime)
	assert.Equal(t, CategoryTrading, trade.Category)

	daily := cfg[KindDailyActive]
	assert.Equal(t, int64(1), daily.DailyLimit)
	assert.False(t, daily.OneTime)

	// Every milestone pays out exactly once.
	for _, kind := range []Kind{
		KindFirstTrade, KindFirstCopyTrade,
		KindStreak3, KindStreak7, KindStreak30,
		KindVolume10K, KindVolume100K, KindVolume1M,
		KindProfit1K, KindProfit10K,
	} {
		assert.True(t, cfg[kind].OneTime, "kind %s", kind)
		assert.Equal(t, CategoryMilestones, cfg[kind].Category, "kind %s", kind)
	}

	// Streak milestones referenced by the update path must exist.
	for _, kind := range streakMilestones {
		_, ok := cfg[kind]
		assert.True(t, ok, "kind %s", kind)
	}
}
