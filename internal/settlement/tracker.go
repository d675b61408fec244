package settlement

import (
	"context"
	"time"

	"github.com/tradeboard/rewards-core/internal/chain"
	"go.uber.org/zap"
)

// Tracker submits a signed transaction and polls chain state until it
// reaches a terminal settlement outcome or the deadline passes. The poll
// interval grows adaptively so fast confirmations stay responsive while
// slow ones stop hammering the node.
type Tracker struct {
	rpc         chain.RPC
	logger      *zap.Logger
	initialPoll time.Duration
	pollCap     time.Duration
	growth      float64
	deadline    time.Duration
	targetLevel chain.ConfirmationLevel

	// Overridable in tests for deterministic timing.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Config holds tracker configuration.
type Config struct {
	RPC             chain.RPC
	Logger          *zap.Logger
	InitialInterval time.Duration           // poll interval floor, default 100ms
	MaxInterval     time.Duration           // poll interval cap, default 2s
	Growth          float64                 // backoff growth factor, default 1.5
	Deadline        time.Duration           // total tracking budget per submission
	TargetLevel     chain.ConfirmationLevel // default confirmed
}

// New creates a new settlement tracker.
func New(cfg *Config) (*Tracker, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if cfg.RPC == nil {
		return nil, errNilRPC
	}
	if cfg.Logger == nil {
		return nil, errNilLogger
	}

	t := &Tracker{
		rpc:         cfg.RPC,
		logger:      cfg.Logger,
		initialPoll: cfg.InitialInterval,
		pollCap:     cfg.MaxInterval,
		growth:      cfg.Growth,
		deadline:    cfg.Deadline,
		targetLevel: cfg.TargetLevel,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	if t.initialPoll <= 0 {
		t.initialPoll = 100 * time.Millisecond
	}
	if t.pollCap <= 0 {
		t.pollCap = 2 * time.Second
	}
	if t.growth <= 1.0 {
		t.growth = 1.5
	}
	if t.deadline <= 0 {
		t.deadline = 60 * time.Second
	}
	if t.targetLevel == chain.LevelUnobserved {
		t.targetLevel = chain.LevelConfirmed
	}
	return t, nil
}

// SubmitAndTrack sends the transaction once and polls until a terminal
// outcome. The returned error is non-nil only when ctx is cancelled before
// a terminal state; the outcome itself carries the settlement verdict. A
// timed-out outcome is not a failure verdict: the transaction may still
// land after the deadline.
func (t *Tracker) SubmitAndTrack(ctx context.Context, tx *chain.SignedTransaction) (outcome Outcome, err error) {
	start := t.now()
	defer func() {
		SettleDurationSeconds.Observe(t.now().Sub(start).Seconds())
		SubmissionsTotal.WithLabelValues(string(outcome.Status)).Inc()
	}()

	signature, submitErr := t.rpc.SubmitTransaction(ctx, tx.Payload)
	if submitErr != nil {
		t.logger.Warn("submission-rejected",
			zap.String("actor", tx.Actor),
			zap.Error(submitErr))
		outcome = Outcome{
			Status: StatusFailed,
			Reason: (&SubmissionError{Cause: submitErr}).Error(),
		}
		return outcome, nil
	}

	t.logger.Info("transaction-sent",
		zap.String("signature", signature),
		zap.String("actor", tx.Actor),
		zap.Duration("deadline", t.deadline))

	interval := t.initialPoll
	attempt := 0

	for t.now().Sub(start) < t.deadline {
		attempt++
		PollCyclesTotal.Inc()

		status, queryErr := t.rpc.SignatureStatus(ctx, signature)
		if queryErr != nil {
			// Transient query hiccups consume one poll cycle at the
			// current interval; they never abort the loop.
			if ctx.Err() != nil {
				outcome = Outcome{Status: StatusTimedOut, Signature: signature}
				return outcome, ctx.Err()
			}
			PollErrorsTotal.Inc()
			t.logger.Warn("status-query-failed-retrying",
				zap.String("signature", signature),
				zap.Int("attempt", attempt),
				zap.Error(queryErr))
			status = &chain.SignatureStatus{Level: chain.LevelUnobserved}
		}

		if status.Err != "" {
			// An erroring transaction is terminal regardless of how far
			// it has been confirmed.
			t.logger.Warn("transaction-failed-on-chain",
				zap.String("signature", signature),
				zap.String("error", status.Err),
				zap.Uint64("slot", status.Slot))
			outcome = Outcome{
				Status:    StatusFailed,
				Signature: signature,
				Slot:      status.Slot,
				Reason:    "on-chain error: " + status.Err,
			}
			return outcome, nil
		}

		if status.Level.AtLeast(t.targetLevel) {
			t.logger.Info("transaction-confirmed",
				zap.String("signature", signature),
				zap.String("level", string(status.Level)),
				zap.Uint64("slot", status.Slot),
				zap.Int("attempts", attempt),
				zap.Duration("elapsed", t.now().Sub(start)))
			outcome = Outcome{
				Status:    StatusConfirmed,
				Signature: signature,
				Slot:      status.Slot,
				Level:     status.Level,
			}
			return outcome, nil
		}

		t.logger.Debug("transaction-not-yet-settled",
			zap.String("signature", signature),
			zap.String("level", string(status.Level)),
			zap.Int("attempt", attempt),
			zap.Duration("next-poll", interval))

		if sleepErr := t.sleep(ctx, interval); sleepErr != nil {
			outcome = Outcome{Status: StatusTimedOut, Signature: signature}
			return outcome, sleepErr
		}

		interval = time.Duration(float64(interval) * t.growth)
		if interval > t.pollCap {
			interval = t.pollCap
		}
	}

	t.logger.Warn("settlement-deadline-exceeded",
		zap.String("signature", signature),
		zap.Duration("deadline", t.deadline),
		zap.Int("attempts", attempt))
	outcome = Outcome{Status: StatusTimedOut, Signature: signature}
	return outcome, nil
}

// sleepCtx sleeps for d or until ctx is done, without leaking the timer.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
