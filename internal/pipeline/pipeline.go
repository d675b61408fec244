// Package pipeline runs the side-effect chain behind a confirmed
// settlement: independent re-fetch, validation, identity resolution,
// content persistence and reward crediting.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradeboard/rewards-core/internal/chain"
	"github.com/tradeboard/rewards-core/internal/content"
	"github.com/tradeboard/rewards-core/internal/identity"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"github.com/tradeboard/rewards-core/internal/settlement"
	"go.uber.org/zap"
)

// Scorer is the reward-accounting collaborator.
type Scorer interface {
	AddScore(ctx context.Context, event scoring.Event) (int64, error)
	QualifiedToday(ctx context.Context, actorID string) (bool, error)
}

// ValidationError indicates a confirmed transaction does not match the
// claimed actor or action shape. Crediting is blocked, but the transaction
// itself succeeded on-chain; this must never surface as a trade failure.
type ValidationError struct {
	Signature string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Signature, e.Reason)
}

// Result reports what the pipeline managed to do for one confirmed
// settlement. Warnings carry post-confirmation step failures; they are
// advisory and never overturn the settlement verdict.
type Result struct {
	ContentID    string
	Points       int64
	SourcePoints int64
	BonusPoints  int64
	Warnings     []string
}

// Pipeline wires the post-settlement collaborators together.
type Pipeline struct {
	indexer  chain.Indexer
	resolver identity.Resolver
	contents content.Store
	scores   Scorer
	logger   *zap.Logger
}

// Config holds pipeline configuration.
type Config struct {
	Indexer  chain.Indexer
	Resolver identity.Resolver
	Contents content.Store
	Scores   Scorer
	Logger   *zap.Logger
}

// New creates a new post-settlement pipeline.
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Indexer == nil {
		return nil, fmt.Errorf("indexer cannot be nil")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if cfg.Contents == nil {
		return nil, fmt.Errorf("content store cannot be nil")
	}
	if cfg.Scores == nil {
		return nil, fmt.Errorf("scorer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Pipeline{
		indexer:  cfg.Indexer,
		resolver: cfg.Resolver,
		contents: cfg.Contents,
		scores:   cfg.Scores,
		logger:   cfg.Logger,
	}, nil
}

// Handle processes one confirmed settlement. The caller must only invoke it
// with a confirmed outcome; failed and timed-out outcomes short-circuit
// before the pipeline.
//
// Scoring inputs (volume, counterparties) come exclusively from the indexer
// re-fetch. The caller-supplied intent is advisory: it selects the expected
// action kind but contributes no numbers.
func (p *Pipeline) Handle(ctx context.Context, outcome settlement.Outcome, tx *chain.SignedTransaction) (*Result, error) {
	if outcome.Status != settlement.StatusConfirmed {
		return nil, fmt.Errorf("outcome is %s, not confirmed", outcome.Status)
	}

	start := time.Now()
	invocationID := uuid.New().String()
	result := &Result{}

	defer func() {
		HandleDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	detail, err := p.indexer.GetTransaction(ctx, outcome.Signature)
	if err != nil {
		// Without the re-fetch nothing downstream can be trusted; the
		// confirmed verdict stands and crediting is skipped.
		IndexerFailuresTotal.Inc()
		p.warn(result, invocationID, "indexer re-fetch failed", err)
		return result, nil
	}

	if err := p.validate(detail, tx); err != nil {
		ValidationFailuresTotal.Inc()
		p.logger.Warn("post-settlement-validation-failed",
			zap.String("invocation-id", invocationID),
			zap.String("signature", outcome.Signature),
			zap.Error(err))
		return result, err
	}

	actorID := p.resolveActor(ctx, result, invocationID, tx.Actor)
	volume := detail.VolumeUSD()

	contentID, err := p.persistContent(ctx, outcome, tx, detail, actorID, volume)
	if err != nil {
		p.warn(result, invocationID, "content persistence failed", err)
	} else {
		result.ContentID = contentID
	}

	// The engagement bonus hinges on whether today already had a
	// qualifying action, so the check precedes the primary award.
	alreadyQualified, err := p.scores.QualifiedToday(ctx, actorID)
	if err != nil {
		p.warn(result, invocationID, "daily qualification check failed", err)
		alreadyQualified = true
	}

	primaryKind := scoring.KindTrade
	if tx.Intent.Kind == chain.ActionCopyTrade {
		primaryKind = scoring.KindCopyTrade
	}

	points, err := p.scores.AddScore(ctx, scoring.Event{
		ActorID: actorID,
		Kind:    primaryKind,
		Values:  map[string]float64{scoring.ValueVolumeUSD: volume},
	})
	if err != nil {
		ScoringFailuresTotal.Inc()
		p.warn(result, invocationID, "primary scoring failed", err)
	} else {
		result.Points = points
	}

	if detail.SourceActor != "" && volume > 0 {
		sourceID := p.resolveActor(ctx, result, invocationID, detail.SourceActor)
		sourcePoints, err := p.scores.AddScore(ctx, scoring.Event{
			ActorID: sourceID,
			Kind:    scoring.KindCopySource,
			Values:  map[string]float64{scoring.ValueVolumeUSD: volume},
		})
		if err != nil {
			ScoringFailuresTotal.Inc()
			p.warn(result, invocationID, "source-actor scoring failed", err)
		} else {
			result.SourcePoints = sourcePoints
		}
	}

	if !alreadyQualified {
		bonusPoints, err := p.scores.AddScore(ctx, scoring.Event{
			ActorID: actorID,
			Kind:    scoring.KindDailyActive,
		})
		if err != nil {
			ScoringFailuresTotal.Inc()
			p.warn(result, invocationID, "daily bonus scoring failed", err)
		} else {
			result.BonusPoints = bonusPoints
		}
	}

	HandledTotal.Inc()
	p.logger.Info("settlement-pipeline-completed",
		zap.String("invocation-id", invocationID),
		zap.String("signature", outcome.Signature),
		zap.String("actor", actorID),
		zap.String("content-id", result.ContentID),
		zap.Int64("points", result.Points),
		zap.Int64("source-points", result.SourcePoints),
		zap.Int64("bonus-points", result.BonusPoints),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// validate checks the re-fetched transaction against the claimed actor and
// action shape.
func (p *Pipeline) validate(detail *chain.TransactionDetail, tx *chain.SignedTransaction) error {
	if detail.Type != "swap" {
		return &ValidationError{
			Signature: detail.Signature,
			Reason:    fmt.Sprintf("transaction type %q is not a swap", detail.Type),
		}
	}
	if detail.FeePayer != tx.Actor {
		return &ValidationError{
			Signature: detail.Signature,
			Reason: fmt.Sprintf("fee payer %s does not match declared actor %s",
				detail.FeePayer, tx.Actor),
		}
	}
	return nil
}

// resolveActor maps an address to its stable identity id, falling back to
// the raw address when resolution fails or finds nothing.
func (p *Pipeline) resolveActor(ctx context.Context, result *Result, invocationID, address string) string {
	resolved, err := p.resolver.Resolve(ctx, address)
	if err != nil {
		IdentityFailuresTotal.Inc()
		p.warn(result, invocationID, "identity resolution failed", err)
		return address
	}
	if resolved == nil {
		return address
	}
	return resolved.ID
}

func (p *Pipeline) persistContent(
	ctx context.Context,
	outcome settlement.Outcome,
	tx *chain.SignedTransaction,
	detail *chain.TransactionDetail,
	actorID string,
	volume float64,
) (string, error) {
	properties := []content.Property{
		{Key: "kind", Value: string(tx.Intent.Kind)},
		{Key: "slot", Value: fmt.Sprintf("%d", outcome.Slot)},
		{Key: "level", Value: string(outcome.Level)},
		{Key: "volume_usd", Value: fmt.Sprintf("%.2f", volume)},
	}
	if trade := tx.Intent.Trade; trade != nil {
		properties = append(properties, content.Property{Key: "route", Value: trade.Route})
	}
	if cp := tx.Intent.Copy; cp != nil {
		properties = append(properties,
			content.Property{Key: "route", Value: cp.Route},
			content.Property{Key: "source_actor", Value: cp.SourceActor})
	}

	return p.contents.Upsert(ctx, &content.Record{
		Signature:  outcome.Signature,
		OwnerID:    actorID,
		Kind:       detail.Type,
		Properties: properties,
		CreatedAt:  time.Now().UTC(),
	})
}

func (p *Pipeline) warn(result *Result, invocationID, message string, err error) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", message, err))
	p.logger.Warn("settlement-pipeline-step-degraded",
		zap.String("invocation-id", invocationID),
		zap.String("step", message),
		zap.Error(err))
}
