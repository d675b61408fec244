package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"github.com/tradeboard/rewards-core/internal/store"
	"github.com/tradeboard/rewards-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print a leaderboard window",
	RunE:  runLeaderboard,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(leaderboardCmd)
	leaderboardCmd.Flags().StringP("window", "w", "lifetime", "Window: lifetime, day, week or month")
	leaderboardCmd.Flags().StringP("category", "c", "", "Category board instead of a time window")
	leaderboardCmd.Flags().Int64P("limit", "n", 10, "Number of entries")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	window, _ := cmd.Flags().GetString("window")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt64("limit")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storeClient, err := store.NewRedis(ctx, &store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer func() {
		_ = storeClient.Close()
	}()

	scores, err := scoring.NewManager(&scoring.ManagerConfig{
		Store:  storeClient,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create score manager: %w", err)
	}

	var entries []scoring.Entry
	if category != "" {
		entries, err = scores.CategoryLeaderboard(ctx, category, limit)
	} else {
		entries, err = scores.Leaderboard(ctx, scoring.Window(window), limit)
	}
	if err != nil {
		return fmt.Errorf("read leaderboard: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("no entries")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("%4d  %-44s  %12.0f\n", entry.Rank, entry.ActorID, entry.Score)
	}

	return nil
}
