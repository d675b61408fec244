package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tradeboard/rewards-core/internal/app"
	"github.com/tradeboard/rewards-core/internal/chain"
	"github.com/tradeboard/rewards-core/internal/settlement"
	"github.com/tradeboard/rewards-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Submit a signed transaction and track it to settlement",
	Long: `Reads a base64-encoded signed transaction from --tx-file, submits it,
polls until a terminal settlement outcome and, if confirmed, runs the
reward pipeline. Prints the outcome and any points credited.`,
	RunE: runTrack,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().StringP("tx-file", "f", "", "File with base64 signed transaction (required)")
	trackCmd.Flags().StringP("actor", "a", "", "Declared fee-payer address (required)")
	trackCmd.Flags().StringP("kind", "k", "trade", "Declared action kind: trade or copy_trade")
	trackCmd.Flags().String("source", "", "Copied trader address (copy_trade only)")
	_ = trackCmd.MarkFlagRequired("tx-file")
	_ = trackCmd.MarkFlagRequired("actor")
}

func runTrack(cmd *cobra.Command, args []string) error {
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

	txFile, _ := cmd.Flags().GetString("tx-file")
	actor, _ := cmd.Flags().GetString("actor")
	kind, _ := cmd.Flags().GetString("kind")
	source, _ := cmd.Flags().GetString("source")

	encoded, err := os.ReadFile(txFile)
	if err != nil {
		return fmt.Errorf("read tx file: %w", err)
	}
	payload, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return fmt.Errorf("decode tx payload: %w", err)
	}

	tx, err := buildTransaction(payload, actor, kind, source)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		_ = application.Shutdown()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SettleDeadline+30*time.Second)
	defer cancel()

	outcome, result, err := application.SettleAndCredit(ctx, tx)
	if err != nil {
		return fmt.Errorf("settle and credit: %w", err)
	}

	printOutcome(cmd, outcome)
	if result != nil {
		cmd.Printf("content id:    %s\n", result.ContentID)
		cmd.Printf("points:        %d (+%d source, +%d bonus)\n",
			result.Points, result.SourcePoints, result.BonusPoints)
		for _, warning := range result.Warnings {
			cmd.Printf("warning:       %s\n", warning)
		}
	}

	return nil
}

func buildTransaction(payload []byte, actor, kind, source string) (*chain.SignedTransaction, error) {
	switch kind {
	case string(chain.ActionTrade):
		return &chain.SignedTransaction{
			Payload: payload,
			Actor:   actor,
			Intent:  chain.Intent{Kind: chain.ActionTrade, Trade: &chain.TradeIntent{}},
		}, nil
	case string(chain.ActionCopyTrade):
		if source == "" {
			return nil, fmt.Errorf("--source is required for copy_trade")
		}
		return &chain.SignedTransaction{
			Payload: payload,
			Actor:   actor,
			Intent: chain.Intent{
				Kind: chain.ActionCopyTrade,
				Copy: &chain.CopyTradeIntent{SourceActor: source},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

func printOutcome(cmd *cobra.Command, outcome settlement.Outcome) {
	cmd.Printf("status:        %s\n", outcome.Status)
	if outcome.Signature != "" {
		cmd.Printf("signature:     %s\n", outcome.Signature)
	}
	switch outcome.Status {
	case settlement.StatusConfirmed:
		cmd.Printf("slot:          %d\n", outcome.Slot)
		cmd.Printf("level:         %s\n", outcome.Level)
	case settlement.StatusFailed:
		cmd.Printf("reason:        %s\n", outcome.Reason)
	case settlement.StatusTimedOut:
		cmd.Println("note:          deadline exceeded; the transaction may still land")
	}
}
