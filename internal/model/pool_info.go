package model

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// PoolInfoColumns is the header of the tabular output, in column order.
var PoolInfoColumns = []string{
	"pool_addr",
	"token0_name",
	"token0_symbol",
	"token1_name",
	"token1_symbol",
	"fee",
	"token0_addr",
	"token1_addr",
	"block_number",
}

// PoolInfo is one output row: a created pool joined with its token metadata.
type PoolInfo struct {
	PoolAddr     common.Address `json:"pool_addr"`
	Token0Name   string         `json:"token0_name"`
	Token0Symbol string         `json:"token0_symbol"`
	Token1Name   string         `json:"token1_name"`
	Token1Symbol string         `json:"token1_symbol"`
	Fee          uint32         `json:"fee"`
	Token0Addr   common.Address `json:"token0_addr"`
	Token1Addr   common.Address `json:"token1_addr"`
	BlockNumber  uint64         `json:"block_number"`
}

// TokenLookup returns already-resolved token metadata.
type TokenLookup interface {
	Get(address common.Address) (TokenMeta, bool)
}

// NewPoolInfo joins an event with metadata for both of its tokens.
// Both tokens must already be present in tokens.
func NewPoolInfo(event PoolCreatedEvent, tokens TokenLookup) (PoolInfo, error) {
	token0, ok := tokens.Get(event.Token0)
	if !ok {
		return PoolInfo{}, fmt.Errorf("token0 %s not resolved", event.Token0.Hex())
	}
	token1, ok := tokens.Get(event.Token1)
	if !ok {
		return PoolInfo{}, fmt.Errorf("token1 %s not resolved", event.Token1.Hex())
	}

	return PoolInfo{
		PoolAddr:     event.Pool,
		Token0Name:   token0.Name.Value,
		Token0Symbol: token0.Symbol.Value,
		Token1Name:   token1.Name.Value,
		Token1Symbol: token1.Symbol.Value,
		Fee:          event.Fee,
		Token0Addr:   event.Token0,
		Token1Addr:   event.Token1,
		BlockNumber:  event.BlockNumber,
	}, nil
}

// Row renders the record in PoolInfoColumns order.
func (p PoolInfo) Row() []string {
	return []string{
		p.PoolAddr.Hex(),
		p.Token0Name,
		p.Token0Symbol,
		p.Token1Name,
		p.Token1Symbol,
		strconv.FormatUint(uint64(p.Fee), 10),
		p.Token0Addr.Hex(),
		p.Token1Addr.Hex(),
		strconv.FormatUint(p.BlockNumber, 10),
	}
}

// ParsePoolInfoRow is the inverse of Row.
func ParsePoolInfoRow(row []string) (PoolInfo, error) {
	if len(row) != len(PoolInfoColumns) {
		return PoolInfo{}, fmt.Errorf("expected %d columns, got %d", len(PoolInfoColumns), len(row))
	}
	for _, idx := range []int{0, 6, 7} {
		if !common.IsHexAddress(row[idx]) {
			return PoolInfo{}, fmt.Errorf("invalid %s: %q", PoolInfoColumns[idx], row[idx])
		}
	}
	fee, err := strconv.ParseUint(row[5], 10, 32)
	if err != nil {
		return PoolInfo{}, fmt.Errorf("invalid fee: %w", err)
	}
	block, err := strconv.ParseUint(row[8], 10, 64)
	if err != nil {
		return PoolInfo{}, fmt.Errorf("invalid block_number: %w", err)
	}

	return PoolInfo{
		PoolAddr:     common.HexToAddress(row[0]),
		Token0Name:   row[1],
		Token0Symbol: row[2],
		Token1Name:   row[3],
		Token1Symbol: row[4],
		Fee:          uint32(fee),
		Token0Addr:   common.HexToAddress(row[6]),
		Token1Addr:   common.HexToAddress(row[7]),
		BlockNumber:  block,
	}, nil
}
