package app

import (
	"context"
	"fmt"

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

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New("rewards-core")

	storeClient, err := setupStore(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup store: %w", err)
	}

	contentStore, err := setupContentStore(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup content store: %w", err)
	}

	resolver, err := setupResolver(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup identity resolver: %w", err)
	}

	feed := make(chan scoring.Award, 256)
	hub := httpserver.NewScoreHub(logger)

	scores, err := setupScores(storeClient, feed, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup score manager: %w", err)
	}

	rpcClient := chain.NewRPCClient(cfg.RPCURL, logger)
	indexerClient := chain.NewIndexerClient(cfg.IndexerURL, logger)

	tracker, err := setupTracker(cfg, rpcClient, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup settlement tracker: %w", err)
	}

	rewardPipeline, err := pipeline.New(&pipeline.Config{
		Indexer:  indexerClient,
		Resolver: resolver,
		Contents: contentStore,
		Scores:   scores,
		Logger:   logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup pipeline: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Boards:        scores,
		Hub:           hub,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		hub:           hub,
		feed:          feed,
		storeClient:   storeClient,
		contentStore:  contentStore,
		resolver:      resolver,
		tracker:       tracker,
		scores:        scores,
		pipeline:      rewardPipeline,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Client, error) {
	return store.NewRedis(ctx, &store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
}

func setupContentStore(cfg *config.Config, logger *zap.Logger) (content.Store, error) {
	return content.NewPostgresStore(&content.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
}

func setupResolver(cfg *config.Config, logger *zap.Logger) (identity.Resolver, error) {
	return identity.NewHTTPResolver(&identity.Config{
		BaseURL:  cfg.IdentityURL,
		CacheTTL: cfg.IdentityCacheTTL,
		Logger:   logger,
	})
}

func setupScores(storeClient store.Client, feed chan scoring.Award, logger *zap.Logger) (*scoring.Manager, error) {
	return scoring.NewManager(&scoring.ManagerConfig{
		Store:  storeClient,
		Table:  scoring.DefaultConfig(),
		Logger: logger,
		Feed:   feed,
	})
}

func setupTracker(cfg *config.Config, rpc chain.RPC, logger *zap.Logger) (*settlement.Tracker, error) {
	return settlement.New(&settlement.Config{
		RPC:             rpc,
		Logger:          logger,
		InitialInterval: cfg.PollInitialBackoff,
		MaxInterval:     cfg.PollMaxBackoff,
		Growth:          cfg.PollBackoffMult,
		Deadline:        cfg.SettleDeadline,
		TargetLevel:     chain.ConfirmationLevel(cfg.TargetLevel),
	})
}
