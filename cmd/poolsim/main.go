package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolsim",
		Short:        "Cross-pool liquidity network simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scripted two-pool scenario",
		RunE:  runScenario,
	}

	runCmd.Flags().String("price-x", "100000000", "feed answer for asset X (raw, at oracle decimals)")
	runCmd.Flags().String("price-y", "100000000", "feed answer for asset Y (raw, at oracle decimals)")
	runCmd.Flags().Uint("oracle-decimals", 8, "feed decimals (max 18)")
	runCmd.Flags().String("liquidity-parameter", "", "quote damping parameter, empty disables damping")
	runCmd.Flags().String("deposit-a", "1000000000000000000000", "initial deposit into pool A")
	runCmd.Flags().String("deposit-b", "1000000000000000000000", "initial deposit into pool B")
	runCmd.Flags().String("swap-amount", "10000000000000000000", "cross-pool swap input amount")
	runCmd.Flags().Duration("settlement-window", time.Hour, "settlement deadline window")
	runCmd.Flags().String("out", "./data/events.jsonl", "output JSONL path")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export pool events from JSONL into Postgres",
		RunE:  runExport,
	}

	exportCmd.Flags().String("in", "", "input events JSONL")
	exportCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	exportCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	exportCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	exportCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	exportCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	exportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
