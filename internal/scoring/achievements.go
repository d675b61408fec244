package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tradeboard/rewards-core/internal/store"
)

// Cumulative milestone ladders: running USD totals (stored as integer
// cents) cross these thresholds at most once each.
var (
	volumeMilestones = []struct {
		Cents int64
		Kind  Kind
	}{
		{Cents: 1_000_000_00, Kind: KindVolume1M},
		{Cents: 100_000_00, Kind: KindVolume100K},
		{Cents: 10_000_00, Kind: KindVolume10K},
	}

	profitMilestones = []struct {
		Cents int64
		Kind  Kind
	}{
		{Cents: 10_000_00, Kind: KindProfit10K},
		{Cents: 1_000_00, Kind: KindProfit1K},
	}

	// firstOfKind maps a primary action to its one-time "first ever" award.
	firstOfKind = map[Kind]Kind{
		KindTrade:     KindFirstTrade,
		KindCopyTrade: KindFirstCopyTrade,
	}
)

// checkMilestones runs the cumulative and first-of-kind achievement checks
// for a committed award. Milestone payouts re-enter AddScore, where the
// one-time guard makes repeated threshold crossings a no-op.
func (m *Manager) checkMilestones(ctx context.Context, event Event, cfg ActionConfig) error {
	if first, ok := firstOfKind[event.Kind]; ok {
		count, err := m.lifetimeCount(ctx, event.ActorID, event.Kind)
		if err != nil {
			return err
		}
		if count == 1 {
			if _, err := m.AddScore(ctx, Event{ActorID: event.ActorID, Kind: first}); err != nil {
				return fmt.Errorf("award %s: %w", first, err)
			}
		}
	}

	// Only primary trading actions feed the cumulative accumulators;
	// milestone awards themselves carry no values and terminate the
	// recursion naturally.
	if cfg.Category != CategoryTrading {
		return nil
	}

	if volume, ok := event.Values[ValueVolumeUSD]; ok && volume > 0 {
		total, err := m.store.HIncrBy(ctx, totalsKey(event.ActorID), "volume_usd_cents", cents(volume))
		if err != nil {
			return fmt.Errorf("accumulate volume: %w", err)
		}
		if err := m.awardCrossed(ctx, event.ActorID, total, volumeMilestones); err != nil {
			return err
		}
	}

	if profit, ok := event.Values[ValueProfitUSD]; ok && profit != 0 {
		total, err := m.store.HIncrBy(ctx, totalsKey(event.ActorID), "profit_usd_cents", cents(profit))
		if err != nil {
			return fmt.Errorf("accumulate profit: %w", err)
		}
		if err := m.awardCrossed(ctx, event.ActorID, total, profitMilestones); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) awardCrossed(ctx context.Context, actorID string, total int64, ladder []struct {
	Cents int64
	Kind  Kind
}) error {
	for _, milestone := range ladder {
		if total < milestone.Cents {
			continue
		}
		if _, err := m.AddScore(ctx, Event{ActorID: actorID, Kind: milestone.Kind}); err != nil {
			return fmt.Errorf("award %s: %w", milestone.Kind, err)
		}
	}
	return nil
}

func (m *Manager) lifetimeCount(ctx context.Context, actorID string, kind Kind) (int64, error) {
	raw, err := m.store.HGet(ctx, countsKey(actorID), string(kind))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read lifetime count: %w", err)
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse lifetime count %q: %w", raw, err)
	}
	return count, nil
}

func cents(usd float64) int64 {
	return int64(usd * 100)
}
