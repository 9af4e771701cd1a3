package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolScope/internal/metrics"
	"poolScope/internal/model"
)

// Decoder turns a raw log into a PoolCreated event.
type Decoder interface {
	Decode(log model.LogRecord) (model.PoolCreatedEvent, error)
}

// TokenResolver is the token metadata cache.
type TokenResolver interface {
	model.TokenLookup
	Resolve(ctx context.Context, address common.Address) (model.TokenMeta, error)
	Len() int
}

// Sink receives output records as they are produced.
type Sink interface {
	Write(record model.PoolInfo) error
}

// DiagnosticSink receives a DecodeError for every skipped entry.
type DiagnosticSink interface {
	Write(value interface{}) error
}

// Config controls pipeline behavior.
type Config struct {
	// ProgressEvery logs progress every N entries; 0 disables it.
	ProgressEvery int
	DecodeErrors  DiagnosticSink
}

// Stats summarizes a run.
type Stats struct {
	Total   int
	Decoded int
	Failed  int
	Written int
	Tokens  int
}

// Pipeline decodes logs, resolves both tokens of every pool and emits one
// PoolInfo per decodable entry, in input order.
type Pipeline struct {
	cfg     Config
	decoder Decoder
	tokens  TokenResolver
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, decoder Decoder, tokens TokenResolver, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		decoder: decoder,
		tokens:  tokens,
		logger:  logger,
		metrics: m,
	}
}

// Run processes logs and writes each record to sink as soon as it is built.
// Decode failures skip the entry; sink and context errors abort the run.
func (p *Pipeline) Run(ctx context.Context, logs []model.LogRecord, sink Sink) (Stats, error) {
	if p.decoder == nil {
		return Stats{}, fmt.Errorf("decoder is nil")
	}
	if p.tokens == nil {
		return Stats{}, fmt.Errorf("token resolver is nil")
	}
	if sink == nil {
		return Stats{}, fmt.Errorf("sink is nil")
	}

	stats := Stats{Total: len(logs)}
	p.logger.Info("pipeline start", zap.Int("total", stats.Total))

	for i, log := range logs {
		if err := ctx.Err(); err != nil {
			return p.finish(stats), err
		}
		p.reportProgress(i, stats.Total)

		event, err := p.decoder.Decode(log)
		if err != nil {
			stats.Failed++
			p.skip(log, err)
			continue
		}
		stats.Decoded++
		p.metrics.RecordDecoded()

		if err := p.resolveTokens(ctx, event); err != nil {
			return p.finish(stats), fmt.Errorf("resolve tokens for pool %s: %w", event.Pool.Hex(), err)
		}

		record, err := model.NewPoolInfo(event, p.tokens)
		if err != nil {
			return p.finish(stats), fmt.Errorf("build record: %w", err)
		}
		if err := sink.Write(record); err != nil {
			return p.finish(stats), err
		}
		stats.Written++
		p.metrics.RecordWritten()
	}

	if stats.Total > 0 {
		p.metrics.SetProgress(1)
	}
	stats = p.finish(stats)
	p.logger.Info("pipeline complete",
		zap.Int("total", stats.Total),
		zap.Int("decoded", stats.Decoded),
		zap.Int("failed", stats.Failed),
		zap.Int("written", stats.Written),
		zap.Int("tokens", stats.Tokens),
	)
	return stats, nil
}

// resolveTokens fetches whichever of token0/token1 is not cached yet, in
// parallel. The cache keeps each address to a single fetch.
func (p *Pipeline) resolveTokens(ctx context.Context, event model.PoolCreatedEvent) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, token := range distinct(event.Token0, event.Token1) {
		if _, ok := p.tokens.Get(token); ok {
			continue
		}
		token := token
		g.Go(func() error {
			_, err := p.tokens.Resolve(gctx, token)
			return err
		})
	}
	return g.Wait()
}

func (p *Pipeline) skip(log model.LogRecord, err error) {
	p.metrics.RecordDecodeFailure()
	p.logger.Warn("decode failed, entry skipped",
		zap.Uint64("block_number", log.Block()),
		zap.String("tx_hash", log.TxHash),
		zap.Uint64("log_index", log.LogIndex),
		zap.Error(err),
	)
	if p.cfg.DecodeErrors == nil {
		return
	}
	if werr := p.cfg.DecodeErrors.Write(model.NewDecodeError(log, err)); werr != nil {
		p.logger.Warn("write decode error failed", zap.Error(werr))
	}
}

func (p *Pipeline) reportProgress(i, total int) {
	if p.cfg.ProgressEvery <= 0 || i%p.cfg.ProgressEvery != 0 {
		return
	}
	processed := float64(i) / float64(total)
	p.metrics.SetProgress(processed)
	p.logger.Info("progress", zap.Int("processed", i), zap.Int("total", total), zap.Float64("fraction", processed))
}

func (p *Pipeline) finish(stats Stats) Stats {
	stats.Tokens = p.tokens.Len()
	return stats
}

func distinct(a, b common.Address) []common.Address {
	if a == b {
		return []common.Address{a}
	}
	return []common.Address{a, b}
}
