package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "rewards-core",
	Short: "Settlement tracking and reward accounting for tradeboard",
	Long: `rewards-core is the settlement and reward-accounting backend of the
tradeboard trading dashboard.

It submits signed transactions, tracks them on-chain to a terminal
settlement outcome, and credits points across time-windowed leaderboards
with one-time achievements, daily limits and streak tracking.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Local .env files are a development convenience; absence is fine.
	_ = godotenv.Load()
}
