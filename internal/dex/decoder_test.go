package dex

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"poolScope/internal/model"
)

var (
	factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	usdc    = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	pool    = common.HexToAddress("0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")
)

func TestPoolCreatedTopic(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	expected := crypto.Keccak256Hash([]byte("PoolCreated(address,address,uint24,int24,address)"))
	require.Equal(t, expected, decoder.Topic0())
	require.Equal(t, "0x783cca1c0412dd0d695e784568c96da2e9c22ff989357a2e8b1d9b2b4e6b7118", decoder.Topic0().Hex())
}

func TestDecodePoolCreated(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	log := poolCreatedLog(t, usdc, weth, 3000, 60, pool, 12370624)

	event, err := decoder.Decode(log)
	require.NoError(t, err)
	require.Equal(t, model.PoolCreatedEvent{
		Token0:      usdc,
		Token1:      weth,
		Fee:         3000,
		TickSpacing: 60,
		Pool:        pool,
		BlockNumber: 12370624,
	}, event)
}

func TestDecodeNegativeTickSpacing(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	event, err := decoder.Decode(poolCreatedLog(t, usdc, weth, 100, -1, pool, 1))
	require.NoError(t, err)
	require.Equal(t, int32(-1), event.TickSpacing)
	require.Equal(t, uint32(100), event.Fee)
}

func TestDecodeMissingBlockNumber(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	log := poolCreatedLog(t, usdc, weth, 500, 10, pool, 0)
	log.BlockNumber = nil

	event, err := decoder.Decode(log)
	require.NoError(t, err)
	require.Zero(t, event.BlockNumber)
}

func TestDecodeIgnoresUnknownParams(t *testing.T) {
	schema := Schema{
		Name: "PoolCreated",
		Params: append(append([]Param{}, PoolCreatedSchema.Params...),
			Param{Name: "salt", Type: "uint256"}),
	}
	decoder, err := NewEventDecoder(schema)
	require.NoError(t, err)

	event, err := decoder.event.Inputs.NonIndexed().Pack(big.NewInt(60), pool, big.NewInt(42))
	require.NoError(t, err)
	log := rawLog(decoder.Topic0(), event, addressTopic(usdc), addressTopic(weth), uintTopic(3000))

	values, err := decoder.DecodeNamed(log)
	require.NoError(t, err)
	require.Contains(t, values, "salt")

	decoded, err := decoder.Decode(log)
	require.NoError(t, err)
	require.Equal(t, pool, decoded.Pool)
	require.Equal(t, int32(60), decoded.TickSpacing)
}

func TestDecodeMissingRequiredParam(t *testing.T) {
	schema := Schema{
		Name: "PoolCreated",
		Params: []Param{
			{Name: "token0", Type: "address", Indexed: true},
			{Name: "token1", Type: "address", Indexed: true},
			{Name: "fee", Type: "uint24", Indexed: true},
			{Name: "tickSpacing", Type: "int24"},
			{Name: "poolAddress", Type: "address"},
		},
	}
	decoder, err := NewEventDecoder(schema)
	require.NoError(t, err)

	data, err := decoder.event.Inputs.NonIndexed().Pack(big.NewInt(60), pool)
	require.NoError(t, err)
	log := rawLog(decoder.Topic0(), data, addressTopic(usdc), addressTopic(weth), uintTopic(3000))

	_, err = decoder.DecodeNamed(log)
	require.NoError(t, err)

	_, err = decoder.Decode(log)
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorContains(t, err, `"pool"`)
}

func TestDecodeMalformed(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	good := poolCreatedLog(t, usdc, weth, 3000, 60, pool, 10)

	tests := []struct {
		name   string
		mutate func(*model.LogRecord)
	}{
		{"no topics", func(l *model.LogRecord) { l.Topics = nil }},
		{"foreign topic0", func(l *model.LogRecord) {
			l.Topics[0] = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")).Hex()
		}},
		{"missing indexed topic", func(l *model.LogRecord) { l.Topics = l.Topics[:3] }},
		{"extra topic", func(l *model.LogRecord) { l.Topics = append(l.Topics, addressTopic(pool).Hex()) }},
		{"short topic", func(l *model.LogRecord) { l.Topics[1] = "0x" + usdc.Hex()[2:] }},
		{"bad topic hex", func(l *model.LogRecord) { l.Topics[2] = "0xzz" }},
		{"empty data", func(l *model.LogRecord) { l.Data = "0x" }},
		{"truncated data", func(l *model.LogRecord) { l.Data = l.Data[:2+64] }},
		{"unaligned data", func(l *model.LogRecord) { l.Data += "00" }},
		{"fee overflow", func(l *model.LogRecord) {
			l.Topics[3] = common.BigToHash(new(big.Int).Lsh(big.NewInt(1), 40)).Hex()
		}},
		{"fee wider than uint24", func(l *model.LogRecord) {
			l.Topics[3] = uintTopic(1 << 24).Hex()
		}},
		{"tickSpacing wider than int24", func(l *model.LogRecord) {
			l.Data = "0x" + uintTopic(1 << 23).Hex()[2:] + l.Data[2+64:]
		}},
		{"tickSpacing below int24", func(l *model.LogRecord) {
			word := common.BigToHash(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1<<23+1)))
			l.Data = "0x" + word.Hex()[2:] + l.Data[2+64:]
		}},
		{"dirty token0 word", func(l *model.LogRecord) {
			l.Topics[1] = "0xff" + l.Topics[1][4:]
		}},
		{"dirty pool word", func(l *model.LogRecord) {
			l.Data = l.Data[:2+64] + "01" + l.Data[2+64+2:]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := good
			log.Topics = append([]string(nil), good.Topics...)
			tt.mutate(&log)

			_, err := decoder.Decode(log)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrDecode), "expected ErrDecode, got %v", err)
		})
	}
}

func TestDecodeWidthBoundaries(t *testing.T) {
	decoder, err := NewEventDecoder(PoolCreatedSchema)
	require.NoError(t, err)

	event, err := decoder.Decode(poolCreatedLog(t, usdc, weth, 1<<24-1, -(1 << 23), pool, 1))
	require.NoError(t, err)
	require.Equal(t, uint32(1<<24-1), event.Fee)
	require.Equal(t, int32(-(1 << 23)), event.TickSpacing)

	event, err = decoder.Decode(poolCreatedLog(t, usdc, weth, 0, 1<<23-1, pool, 1))
	require.NoError(t, err)
	require.Equal(t, int32(1<<23-1), event.TickSpacing)
}

func TestSchemaValidation(t *testing.T) {
	_, err := NewEventDecoder(Schema{})
	require.Error(t, err)

	_, err = NewEventDecoder(Schema{Name: "X", Params: []Param{{Name: "a", Type: "uint7"}}})
	require.Error(t, err)

	_, err = NewEventDecoder(Schema{Name: "X", Params: []Param{{Name: "a", Type: "address"}, {Name: "a", Type: "address"}}})
	require.Error(t, err)
}

func poolCreatedLog(t *testing.T, token0, token1 common.Address, fee uint32, tickSpacing int32, pool common.Address, block uint64) model.LogRecord {
	t.Helper()

	event, err := PoolCreatedSchema.Event()
	require.NoError(t, err)
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(int64(tickSpacing)), pool)
	require.NoError(t, err)

	log := rawLog(event.ID, data, addressTopic(token0), addressTopic(token1), uintTopic(uint64(fee)))
	if block > 0 {
		log.BlockNumber = &block
	}
	return log
}

func rawLog(topic0 common.Hash, data []byte, indexed ...common.Hash) model.LogRecord {
	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, topic0.Hex())
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}
	return model.LogRecord{
		TxHash:  "0xdef",
		Address: factory.Hex(),
		Topics:  topics,
		Data:    hexutil.Encode(data),
	}
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func uintTopic(v uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(v))
}
