package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolScope/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscan",
		Short:        "Uniswap V3 pool creation scanner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan PoolCreated events and write enriched pool records",
		RunE:  runScan,
	}

	scanCmd.Flags().String("rpc", "", "Ethereum RPC URL (falls back to INFURA_URL)")
	scanCmd.Flags().String("factory", config.DefaultFactory, "pool factory address")
	scanCmd.Flags().Uint64("from", config.DefaultFromBlock, "start block (inclusive)")
	scanCmd.Flags().Uint64("window", 0, "blocks per eth_getLogs query, 0 means a single open-ended query")
	scanCmd.Flags().String("in", "", "read raw logs from a JSONL file written by fetch instead of the chain")
	scanCmd.Flags().String("out", "pools.csv", "output path")
	scanCmd.Flags().String("format", "csv", "output format (csv, jsonl)")
	scanCmd.Flags().String("errors", "", "optional decode errors JSONL")
	scanCmd.Flags().Int("progress-every", 10, "log progress every N entries, 0 disables")
	scanCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw factory logs into a JSONL file",
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("rpc", "", "Ethereum RPC URL (falls back to INFURA_URL)")
	fetchCmd.Flags().String("factory", config.DefaultFactory, "pool factory address")
	fetchCmd.Flags().Uint64("from", config.DefaultFromBlock, "start block (inclusive)")
	fetchCmd.Flags().Uint64("window", 0, "blocks per eth_getLogs query, 0 means a single open-ended query")
	fetchCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

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
