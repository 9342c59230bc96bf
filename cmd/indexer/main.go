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
		Use:          "indexer",
		Short:        "VaultFactory event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Project raw VaultFactory logs into entities",
		RunE:  runProject,
	}

	projectCmd.Flags().String("in", "", "input raw logs JSONL (block ordered)")
	projectCmd.Flags().String("manifest", "./subgraph.yaml", "data source manifest")
	projectCmd.Flags().StringSlice("data-source", nil, "only run these manifest data sources (comma-separated)")
	projectCmd.Flags().String("store", "sqlite", "entity store (memory, jsonl, sqlite, postgres)")
	projectCmd.Flags().String("store-path", "", "entity store path (default ./data/entities.jsonl for jsonl, ./data/entities.db for sqlite)")
	projectCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	projectCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path (jsonl store)")
	projectCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	projectCmd.Flags().Int("max-retries", 5, "maximum retry attempts per block")
	projectCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	projectCmd.Flags().String("errors", "./data/project_errors.jsonl", "decode errors JSONL")
	projectCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	projectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(projectCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().Bool("include-raw", false, "attach topic0 and data to each typed event")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate a data source manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}

	root.AddCommand(validateCmd)

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
