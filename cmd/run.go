package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tradeboard/rewards-core/internal/app"
	"github.com/tradeboard/rewards-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the rewards-core service",
	Long: `Starts the rewards-core service, which will:
1. Connect to Redis, Postgres and the chain collaborators
2. Serve leaderboard and history reads plus the live score feed
3. Settle and credit transactions handed to it by the API layer`,
	RunE: runService,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
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

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
