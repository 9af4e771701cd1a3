package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolScope/internal/model"
)

// ErrLogFilter marks a log query rejected or failed by the RPC.
var ErrLogFilter = errors.New("log filter")

// LogClient is the subset of the chain client used to fetch logs.
type LogClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// ChainSource fetches historical logs for a FilterSpec.
type ChainSource struct {
	client     LogClient
	windowSize uint64
	logger     *zap.Logger
}

// NewChainSource builds a source. windowSize 0 issues a single open-ended
// query; otherwise the range up to the current head is split into windows.
func NewChainSource(client LogClient, windowSize uint64, logger *zap.Logger) *ChainSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChainSource{client: client, windowSize: windowSize, logger: logger}
}

// Fetch returns all matching logs in chain order.
func (s *ChainSource) Fetch(ctx context.Context, spec FilterSpec) ([]model.LogRecord, error) {
	if s.client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}

	if s.windowSize == 0 {
		s.logger.Info("fetch logs", zap.String("address", spec.Address.Hex()), zap.Uint64("from", spec.FromBlock))
		logs, err := s.client.FilterLogs(ctx, spec.Query())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLogFilter, err)
		}
		return buildLogRecords(nil, logs), nil
	}

	head, err := s.client.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: latest block: %v", ErrLogFilter, err)
	}
	if spec.FromBlock > head {
		s.logger.Info("nothing to fetch", zap.Uint64("from", spec.FromBlock), zap.Uint64("head", head))
		return nil, nil
	}

	ranges, err := SplitRange(spec.FromBlock, head, s.windowSize)
	if err != nil {
		return nil, err
	}

	var records []model.LogRecord
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logs, err := s.client.FilterLogs(ctx, spec.Window(blockRange.From, blockRange.To))
		if err != nil {
			return nil, fmt.Errorf("%w: blocks %d-%d: %v", ErrLogFilter, blockRange.From, blockRange.To, err)
		}
		records = buildLogRecords(records, logs)
		s.logger.Debug("window fetched", zap.Int("logs", len(logs)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}
	return records, nil
}

func buildLogRecords(dst []model.LogRecord, logs []types.Log) []model.LogRecord {
	if dst == nil {
		dst = make([]model.LogRecord, 0, len(logs))
	}
	for _, log := range logs {
		if log.Removed {
			continue
		}
		dst = append(dst, buildLogRecord(log))
	}
	return dst
}
