package scoring

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Store key layout. Day/week/month aggregates are keyed by UTC calendar
// window so old windows age out via expiry rather than deletion.
func lifetimeKey() string           { return "lb:lifetime" }
func dayKey(t time.Time) string     { return "lb:day:" + t.UTC().Format(dateLayout) }
func monthKey(t time.Time) string   { return "lb:month:" + t.UTC().Format("2006-01") }
func categoryKey(cat string) string { return "lb:cat:" + cat }

func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("lb:week:%d-W%02d", year, week)
}

func countsKey(actorID string) string       { return "actor:" + actorID + ":counts" }
func achievementsKey(actorID string) string { return "actor:" + actorID + ":achievements" }
func historyKey(actorID string) string      { return "actor:" + actorID + ":history" }
func streakKey(actorID string) string       { return "actor:" + actorID + ":streak" }
func totalsKey(actorID string) string       { return "actor:" + actorID + ":totals" }

func dailyKey(actorID string, t time.Time) string {
	return "actor:" + actorID + ":daily:" + t.UTC().Format(dateLayout)
}

// Window container lifetimes.
const (
	dayWindowTTL    = 7 * 24 * time.Hour
	weekWindowTTL   = 30 * 24 * time.Hour
	monthWindowTTL  = 365 * 24 * time.Hour
	dailyCounterTTL = 24 * time.Hour
)
