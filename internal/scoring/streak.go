package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/tradeboard/rewards-core/internal/store"
	"go.uber.org/zap"
)

// StreakState tracks consecutive UTC calendar days with a qualifying action.
type StreakState struct {
	Length   int    `json:"length"`
	LastDate string `json:"lastDate"` // UTC day, 2006-01-02
}

// streakMilestones maps streak lengths to their one-time milestone awards.
var streakMilestones = map[int]Kind{
	3:  KindStreak3,
	7:  KindStreak7,
	30: KindStreak30,
}

func (m *Manager) streakState(ctx context.Context, actorID string) (*StreakState, error) {
	raw, err := m.store.Get(ctx, streakKey(actorID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read streak state: %w", err)
	}
	var state StreakState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("unmarshal streak state: %w", err)
	}
	return &state, nil
}

func (m *Manager) writeStreak(ctx context.Context, actorID string, state StreakState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal streak state: %w", err)
	}
	if err := m.store.Set(ctx, streakKey(actorID), string(payload)); err != nil {
		return fmt.Errorf("write streak state: %w", err)
	}
	return nil
}

// updateStreak applies the daily-continuity rule after a qualifying award.
// Same-day repeats are no-ops, a one-day gap extends the streak, anything
// longer resets it to 1. A last-qualifying date in the future (clock skew,
// out-of-order delivery) is ignored: streak state is never decremented.
func (m *Manager) updateStreak(ctx context.Context, actorID string, now time.Time) error {
	today := now.UTC().Format(dateLayout)

	state, err := m.streakState(ctx, actorID)
	if err != nil {
		return err
	}

	if state == nil {
		StreaksStartedTotal.Inc()
		return m.writeStreak(ctx, actorID, StreakState{Length: 1, LastDate: today})
	}

	daysDiff, err := daysBetween(state.LastDate, today)
	if err != nil {
		return err
	}

	switch {
	case daysDiff == 0:
		return nil

	case daysDiff == 1:
		state.Length++
		state.LastDate = today
		if err := m.writeStreak(ctx, actorID, *state); err != nil {
			return err
		}
		m.logger.Debug("streak-extended",
			zap.String("actor", actorID),
			zap.Int("length", state.Length))

		if milestone, ok := streakMilestones[state.Length]; ok {
			if _, err := m.AddScore(ctx, Event{ActorID: actorID, Kind: milestone}); err != nil {
				return fmt.Errorf("award streak milestone %s: %w", milestone, err)
			}
		}
		return nil

	case daysDiff > 1:
		StreaksBrokenTotal.Inc()
		m.logger.Debug("streak-broken",
			zap.String("actor", actorID),
			zap.Int("previous-length", state.Length),
			zap.Int("gap-days", daysDiff))
		return m.writeStreak(ctx, actorID, StreakState{Length: 1, LastDate: today})

	default:
		// daysDiff < 0: stored date is ahead of the observed day.
		m.logger.Warn("streak-event-out-of-order",
			zap.String("actor", actorID),
			zap.String("last-date", state.LastDate),
			zap.String("today", today))
		return nil
	}
}

// Streak returns the actor's current streak state, nil when none exists.
func (m *Manager) Streak(ctx context.Context, actorID string) (*StreakState, error) {
	return m.streakState(ctx, actorID)
}

// daysBetween returns the whole-day difference to - from for two UTC dates.
func daysBetween(from, to string) (int, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("parse streak date %q: %w", from, err)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse streak date %q: %w", to, err)
	}
	return int(toDay.Sub(fromDay).Hours() / 24), nil
}
