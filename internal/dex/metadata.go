package dex

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"poolScope/internal/metrics"
	"poolScope/internal/model"
)

const (
	methodName   = "name"
	methodSymbol = "symbol"
)

var errNoCaller = errors.New("token caller is nil")

// TokenCaller performs a single read-only string call on a token contract.
type TokenCaller interface {
	CallString(ctx context.Context, token common.Address, method string) (string, error)
}

// TokenMetaCache resolves token metadata once per address and keeps it for
// the lifetime of the cache. Entries are never evicted.
type TokenMetaCache struct {
	caller  TokenCaller
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	data   map[common.Address]model.TokenMeta
	flight singleflight.Group
}

func NewTokenMetaCache(caller TokenCaller, logger *zap.Logger, m *metrics.Metrics) *TokenMetaCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenMetaCache{
		caller:  caller,
		logger:  logger,
		metrics: m,
		data:    make(map[common.Address]model.TokenMeta),
	}
}

// Get returns cached metadata without calling the chain.
func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

// Len returns the number of resolved tokens.
func (c *TokenMetaCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Resolve returns metadata for address, fetching it on the first request.
// Concurrent callers for the same address share one fetch. Failed name or
// symbol calls yield defaulted fields; the only error is ctx cancellation,
// in which case nothing is cached.
func (c *TokenMetaCache) Resolve(ctx context.Context, address common.Address) (model.TokenMeta, error) {
	if meta, ok := c.Get(address); ok {
		return meta, nil
	}

	v, err, _ := c.flight.Do(address.Hex(), func() (interface{}, error) {
		// A flight for this key may have completed between Get and Do.
		if meta, ok := c.Get(address); ok {
			return meta, nil
		}

		meta := model.TokenMeta{
			Address: address,
			Name:    c.fetchField(ctx, address, methodName),
			Symbol:  c.fetchField(ctx, address, methodSymbol),
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.data[address] = meta
		size := len(c.data)
		c.mu.Unlock()
		c.metrics.SetTokensCached(size)

		c.logger.Debug("token resolved",
			zap.String("token", address.Hex()),
			zap.String("name", meta.Name.Value),
			zap.String("symbol", meta.Symbol.Value),
		)
		return meta, nil
	})
	if err != nil {
		return model.TokenMeta{}, err
	}
	return v.(model.TokenMeta), nil
}

func (c *TokenMetaCache) fetchField(ctx context.Context, address common.Address, method string) model.TokenField {
	if c.caller == nil {
		return model.DefaultedField(errNoCaller)
	}
	value, err := c.caller.CallString(ctx, address, method)
	c.metrics.RecordTokenCall(method, err == nil)
	if err != nil {
		c.logger.Warn("token metadata call failed",
			zap.String("token", address.Hex()),
			zap.String("method", method),
			zap.Error(err),
		)
		return model.DefaultedField(err)
	}
	return model.ResolvedField(value)
}
