package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/indexer"
	"poolScope/internal/storage"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	factory, err := indexer.ParseAddress(cfg.Factory)
	if err != nil {
		return err
	}
	decoder, err := dex.NewEventDecoder(dex.PoolCreatedSchema)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	spec := indexer.FilterSpec{
		Address:   factory,
		FromBlock: cfg.FromBlock,
		Topic0:    decoder.Topic0(),
	}

	logger.Info("fetch start",
		zap.String("factory", factory.Hex()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("window", cfg.Window),
		zap.String("out", cfg.Out),
	)

	logs, err := indexer.NewChainSource(chainClient, cfg.Window, logger).Fetch(ctx, spec)
	if err != nil {
		return err
	}

	writer, err := storage.NewJSONLWriter(cfg.Out)
	if err != nil {
		return err
	}
	for _, record := range logs {
		if err := writer.Write(record); err != nil {
			_ = writer.Abort()
			return err
		}
	}
	if err := writer.Commit(); err != nil {
		return err
	}

	logger.Info("fetch complete", zap.Int("logs", len(logs)), zap.String("out", cfg.Out))
	return nil
}
