package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/tradeboard/rewards-core/internal/store"
	"go.uber.org/zap"
)

// Event is a scoring request for a verified action. Ephemeral.
type Event struct {
	ActorID string
	Kind    Kind
	Values  map[string]float64
}

// Record is the persisted trace of one award, appended to the actor's
// bounded recent-history list.
type Record struct {
	Kind      Kind               `json:"kind"`
	Score     int64              `json:"score"`
	Values    map[string]float64 `json:"values,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Award is a feed notification emitted after an award commits.
type Award struct {
	ActorID string    `json:"actorId"`
	Kind    Kind      `json:"kind"`
	Points  int64     `json:"points"`
	At      time.Time `json:"at"`
}

// Entry is a derived leaderboard row. Never stored; recomputed from
// sorted-set state on read.
type Entry struct {
	ActorID string  `json:"actorId"`
	Score   float64 `json:"score"`
	Rank    int64   `json:"rank"`
}

// Window selects a time-scoped leaderboard.
type Window string

const (
	WindowLifetime Window = "lifetime"
	WindowDay      Window = "day"
	WindowWeek     Window = "week"
	WindowMonth    Window = "month"
)

// historyCap bounds the recent-history list; oldest entries are evicted.
const historyCap = 100

// Manager awards points and maintains all derived aggregates.
type Manager struct {
	store  store.Client
	config Config
	logger *zap.Logger
	feed   chan<- Award

	// Overridable in tests for deterministic calendar behavior.
	now func() time.Time
}

// ManagerConfig holds score manager configuration.
type ManagerConfig struct {
	Store  store.Client
	Table  Config
	Logger *zap.Logger
	Feed   chan<- Award // optional; sends never block
}

// NewManager creates a new score manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	table := cfg.Table
	if table == nil {
		table = DefaultConfig()
	}

	return &Manager{
		store:  cfg.Store,
		config: table,
		logger: cfg.Logger,
		feed:   cfg.Feed,
		now:    time.Now,
	}, nil
}

// AddScore awards points for an action and updates every applicable
// aggregate atomically. It returns the points actually credited: 0 when a
// one-time action has already paid out or a daily limit is exhausted.
//
// The guard checks and the write batch are separate store round-trips:
// concurrent calls for the same actor and kind can both pass a guard and
// both award. The batch itself is atomic, so aggregates never diverge from
// each other.
func (m *Manager) AddScore(ctx context.Context, event Event) (points int64, err error) {
	cfg, ok := m.config[event.Kind]
	if !ok {
		panic(fmt.Sprintf("scoring: unknown action kind %q", event.Kind))
	}

	now := m.now().UTC()

	if cfg.OneTime {
		done, guardErr := m.store.SIsMember(ctx, achievementsKey(event.ActorID), string(event.Kind))
		if guardErr != nil {
			return 0, fmt.Errorf("one-time guard for %s: %w", event.Kind, guardErr)
		}
		if done {
			GuardRejectionsTotal.WithLabelValues("one_time").Inc()
			return 0, nil
		}
	}

	if cfg.DailyLimit > 0 {
		count, guardErr := m.dailyCount(ctx, event.ActorID, event.Kind, now)
		if guardErr != nil {
			return 0, fmt.Errorf("daily guard for %s: %w", event.Kind, guardErr)
		}
		if count >= cfg.DailyLimit {
			GuardRejectionsTotal.WithLabelValues("daily_limit").Inc()
			return 0, nil
		}
	}

	points = cfg.Score(event.Values)

	record := Record{
		Kind:      event.Kind,
		Score:     points,
		Values:    event.Values,
		Timestamp: now,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("marshal action record: %w", err)
	}

	actor := event.ActorID
	daily := dailyKey(actor, now)
	score := float64(points)

	ops := []store.Op{
		store.ZIncrByOp(lifetimeKey(), score, actor),
		store.ZIncrByOp(dayKey(now), score, actor),
		store.ZIncrByOp(weekKey(now), score, actor),
		store.ZIncrByOp(monthKey(now), score, actor),
		store.HIncrByOp(countsKey(actor), string(event.Kind), 1),
		store.HIncrByOp(daily, string(event.Kind), 1),
		store.ExpireOp(daily, dailyCounterTTL),
		store.LPushOp(historyKey(actor), string(payload)),
		store.LTrimOp(historyKey(actor), 0, historyCap-1),
		store.ExpireOp(dayKey(now), dayWindowTTL),
		store.ExpireOp(weekKey(now), weekWindowTTL),
		store.ExpireOp(monthKey(now), monthWindowTTL),
	}
	if cfg.Category != "" {
		ops = append(ops, store.ZIncrByOp(categoryKey(cfg.Category), score, actor))
	}
	if cfg.OneTime {
		ops = append(ops, store.SAddOp(achievementsKey(actor), string(event.Kind)))
	}

	if err = m.store.Batch(ctx, ops); err != nil {
		return 0, fmt.Errorf("commit award batch: %w", err)
	}

	AwardsTotal.WithLabelValues(string(event.Kind)).Inc()
	PointsAwardedTotal.WithLabelValues(string(event.Kind)).Add(score)

	m.logger.Info("score-awarded",
		zap.String("actor", actor),
		zap.String("kind", string(event.Kind)),
		zap.Int64("points", points))

	m.publish(Award{ActorID: actor, Kind: event.Kind, Points: points, At: now})

	// Side checks run after the batch commits and re-enter AddScore for
	// their own kinds, each with its own independent guard.
	if cfg.StreakQualifying {
		if streakErr := m.updateStreak(ctx, actor, now); streakErr != nil {
			m.logger.Warn("streak-update-failed",
				zap.String("actor", actor),
				zap.Error(streakErr))
		}
	}
	if milestoneErr := m.checkMilestones(ctx, event, cfg); milestoneErr != nil {
		m.logger.Warn("milestone-check-failed",
			zap.String("actor", actor),
			zap.Error(milestoneErr))
	}

	return points, nil
}

// dailyCount reads today's per-actor counter for a kind. Missing key or
// field means zero.
func (m *Manager) dailyCount(ctx context.Context, actorID string, kind Kind, now time.Time) (int64, error) {
	raw, err := m.store.HGet(ctx, dailyKey(actorID, now), string(kind))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse daily counter %q: %w", raw, err)
	}
	return count, nil
}

// QualifiedToday reports whether the actor already performed a
// streak-qualifying action on the current UTC day. Used by the pipeline to
// gate the same-day engagement bonus.
func (m *Manager) QualifiedToday(ctx context.Context, actorID string) (bool, error) {
	state, err := m.streakState(ctx, actorID)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	return state.LastDate == m.now().UTC().Format(dateLayout), nil
}

// publish sends an award to the feed without ever blocking the award path.
func (m *Manager) publish(award Award) {
	if m.feed == nil {
		return
	}
	select {
	case m.feed <- award:
	default:
		FeedDroppedTotal.Inc()
	}
}

// Leaderboard returns the top entries for a time window, ranked by
// descending score. Ties share adjacent ranks in store order.
func (m *Manager) Leaderboard(ctx context.Context, window Window, limit int64) ([]Entry, error) {
	key, err := m.windowKey(window)
	if err != nil {
		return nil, err
	}
	return m.readBoard(ctx, key, limit)
}

// CategoryLeaderboard returns the top entries for a category board.
func (m *Manager) CategoryLeaderboard(ctx context.Context, category string, limit int64) ([]Entry, error) {
	return m.readBoard(ctx, categoryKey(category), limit)
}

func (m *Manager) readBoard(ctx context.Context, key string, limit int64) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := m.store.ZRevRangeWithScores(ctx, key, 0, limit-1)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", key, err)
	}
	entries := make([]Entry, 0, len(members))
	for i, member := range members {
		entries = append(entries, Entry{
			ActorID: member.ID,
			Score:   member.Score,
			Rank:    int64(i) + 1,
		})
	}
	return entries, nil
}

// Rank returns one actor's entry in a window, or ErrNotRanked when the
// actor has no score there.
func (m *Manager) Rank(ctx context.Context, window Window, actorID string) (Entry, error) {
	key, err := m.windowKey(window)
	if err != nil {
		return Entry{}, err
	}
	rank, err := m.store.ZRevRank(ctx, key, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return Entry{}, ErrNotRanked
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read rank %s: %w", key, err)
	}

	// Score comes from the same zset; a single-member range read.
	members, err := m.store.ZRevRangeWithScores(ctx, key, rank, rank)
	if err != nil {
		return Entry{}, fmt.Errorf("read score %s: %w", key, err)
	}
	entry := Entry{ActorID: actorID, Rank: rank + 1}
	if len(members) > 0 {
		entry.Score = members[0].Score
	}
	return entry, nil
}

// History returns the actor's most recent awards, newest first.
func (m *Manager) History(ctx context.Context, actorID string, limit int64) ([]Record, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}
	raw, err := m.store.LRange(ctx, historyKey(actorID), 0, limit-1)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var record Record
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			// Skip malformed entries but continue.
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (m *Manager) windowKey(window Window) (string, error) {
	now := m.now().UTC()
	switch window {
	case WindowLifetime:
		return lifetimeKey(), nil
	case WindowDay:
		return dayKey(now), nil
	case WindowWeek:
		return weekKey(now), nil
	case WindowMonth:
		return monthKey(now), nil
	default:
		return "", fmt.Errorf("unknown leaderboard window %q", window)
	}
}

// ErrNotRanked indicates the actor has no score in the requested window.
var ErrNotRanked = errors.New("scoring: actor not ranked")
