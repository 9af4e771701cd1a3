package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/indexer"
	"poolScope/internal/metrics"
	"poolScope/internal/model"
	"poolScope/internal/pipeline"
	"poolScope/internal/storage"
)

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
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

	m := metrics.New()
	m.StartServer(cfg.MetricsAddr, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(shutdownCtx)
	}()

	logger.Info("scan start",
		zap.String("factory", cfg.Factory),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("window", cfg.Window),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("format", cfg.Format),
	)

	logs, err := loadLogs(ctx, cfg, chainClient, decoder, m, logger)
	if err != nil {
		return err
	}

	sink, err := storage.NewRecordSink(cfg.Format, cfg.Out)
	if err != nil {
		return err
	}

	pipeCfg := pipeline.Config{ProgressEvery: cfg.ProgressEvery}
	var errWriter *storage.JSONLWriter
	if cfg.Errors != "" {
		errWriter, err = storage.NewJSONLWriter(cfg.Errors)
		if err != nil {
			_ = sink.Abort()
			return err
		}
		pipeCfg.DecodeErrors = errWriter
	}

	cache := dex.NewTokenMetaCache(dex.NewERC20Caller(chainClient), logger, m)
	stats, err := pipeline.New(pipeCfg, decoder, cache, logger, m).Run(ctx, logs, sink)
	if err != nil {
		_ = sink.Abort()
		if errWriter != nil {
			_ = errWriter.Abort()
		}
		return err
	}

	if err := commitOutputs(sink, errWriter); err != nil {
		return err
	}

	logger.Info("scan complete",
		zap.Int("logs", stats.Total),
		zap.Int("pools", stats.Written),
		zap.Int("failed", stats.Failed),
		zap.Int("tokens", stats.Tokens),
		zap.String("out", cfg.Out),
	)
	return nil
}

// commitOutputs moves the records and decode errors into place. If the
// records cannot be committed the decode errors are discarded too.
func commitOutputs(sink storage.RecordSink, errWriter *storage.JSONLWriter) error {
	if err := sink.Commit(); err != nil {
		if errWriter != nil {
			_ = errWriter.Abort()
		}
		return err
	}
	if errWriter != nil {
		return errWriter.Commit()
	}
	return nil
}

func loadLogs(ctx context.Context, cfg config.ScanConfig, client *chain.Client, decoder *dex.EventDecoder, m *metrics.Metrics, logger *zap.Logger) ([]model.LogRecord, error) {
	if cfg.In != "" {
		logs, err := storage.ReadLogRecords(cfg.In)
		if err != nil {
			return nil, err
		}
		m.RecordLogsLoaded(len(logs))
		return logs, nil
	}

	factory, err := indexer.ParseAddress(cfg.Factory)
	if err != nil {
		return nil, err
	}
	spec := indexer.FilterSpec{
		Address:   factory,
		FromBlock: cfg.FromBlock,
		Topic0:    decoder.Topic0(),
	}

	start := time.Now()
	logs, err := indexer.NewChainSource(client, cfg.Window, logger).Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	m.RecordLogsFetched(len(logs), time.Since(start))
	return logs, nil
}
