// Package app wires the settlement and reward-accounting components into a
// runnable service.
package app

import (
	"context"
	"sync"

	"github.com/tradeboard/rewards-core/internal/chain"
	"github.com/tradeboard/rewards-core/internal/content"
	"github.com/tradeboard/rewards-core/internal/identity"
	"github.com/tradeboard/rewards-core/internal/pipeline"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"github.com/tradeboard/rewards-core/internal/settlement"
	"github.com/tradeboard/rewards-core/internal/store"
	"github.com/tradeboard/rewards-core/pkg/config"
	"github.com/tradeboard/rewards-core/pkg/healthprobe"
	"github.com/tradeboard/rewards-core/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the assembled service.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	hub           *httpserver.ScoreHub
	feed          chan scoring.Award
	storeClient   store.Client
	contentStore  content.Store
	resolver      identity.Resolver
	tracker       *settlement.Tracker
	scores        *scoring.Manager
	pipeline      *pipeline.Pipeline

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SettleAndCredit submits the transaction, tracks it to a terminal outcome
// and, on confirmation, runs the reward pipeline. The settlement outcome is
// authoritative: pipeline problems ride along as advisory data and never
// change the verdict.
func (a *App) SettleAndCredit(ctx context.Context, tx *chain.SignedTransaction) (settlement.Outcome, *pipeline.Result, error) {
	outcome, err := a.tracker.SubmitAndTrack(ctx, tx)
	if err != nil {
		return outcome, nil, err
	}
	if outcome.Status != settlement.StatusConfirmed {
		return outcome, nil, nil
	}

	result, err := a.pipeline.Handle(ctx, outcome, tx)
	if err != nil {
		// Validation rejections block crediting but the confirmed
		// outcome still stands.
		a.logger.Warn("crediting-blocked",
			zap.String("signature", outcome.Signature),
			zap.Error(err))
		return outcome, nil, nil
	}
	return outcome, result, nil
}

// Scores exposes the score manager for read paths.
func (a *App) Scores() *scoring.Manager {
	return a.scores
}

// Identity returns the wired identity resolver.
func (a *App) Identity(ctx context.Context, address string) (*identity.Identity, error) {
	return a.resolver.Resolve(ctx, address)
}
