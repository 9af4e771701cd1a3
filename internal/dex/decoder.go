package dex

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolScope/internal/model"
)

// ErrDecode marks a log entry that does not match the event schema.
var ErrDecode = errors.New("decode")

// EventDecoder decodes logs of a single event schema.
type EventDecoder struct {
	event   abi.Event
	indexed abi.Arguments
}

// NewEventDecoder compiles schema into a decoder.
func NewEventDecoder(schema Schema) (*EventDecoder, error) {
	event, err := schema.Event()
	if err != nil {
		return nil, err
	}
	return &EventDecoder{
		event:   event,
		indexed: indexedArguments(event.Inputs),
	}, nil
}

// Topic0 returns the event signature hash.
func (d *EventDecoder) Topic0() common.Hash {
	return d.event.ID
}

// DecodeNamed decodes a log into a parameter name -> value map.
// Integers wider than 64 bits (and uint24/int24) come back as *big.Int.
func (d *EventDecoder) DecodeNamed(log model.LogRecord) (map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("%w: missing topics", ErrDecode)
	}
	topics, err := parseTopicHashes(log.Topics)
	if err != nil {
		return nil, err
	}
	if topics[0] != d.event.ID {
		return nil, fmt.Errorf("%w: topic0 %s is not %s", ErrDecode, log.Topics[0], d.event.Sig)
	}
	if len(topics)-1 != len(d.indexed) {
		return nil, fmt.Errorf("%w: expected %d topics, got %d", ErrDecode, len(d.indexed)+1, len(topics))
	}

	data, err := hexutil.Decode(normalizeHex(log.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid data: %v", ErrDecode, err)
	}
	if len(data)%32 != 0 {
		return nil, fmt.Errorf("%w: data length %d is not a multiple of 32", ErrDecode, len(data))
	}

	if err := d.checkAddressWords(topics[1:], data); err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(d.event.Inputs))
	if err := abi.ParseTopicsIntoMap(values, d.indexed, topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: parse topics: %v", ErrDecode, err)
	}
	if err := d.event.Inputs.UnpackIntoMap(values, data); err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", ErrDecode, d.event.Name, err)
	}
	return values, nil
}

// Decode decodes a PoolCreated log. Parameters are matched by name; names the
// event does not need are ignored, missing ones fail the entry.
func (d *EventDecoder) Decode(log model.LogRecord) (model.PoolCreatedEvent, error) {
	values, err := d.DecodeNamed(log)
	if err != nil {
		return model.PoolCreatedEvent{}, err
	}
	return d.projectPoolCreated(values, log.Block())
}

func (d *EventDecoder) projectPoolCreated(values map[string]interface{}, block uint64) (model.PoolCreatedEvent, error) {
	event := model.PoolCreatedEvent{BlockNumber: block}

	var err error
	if event.Token0, err = addressParam(values, "token0"); err != nil {
		return model.PoolCreatedEvent{}, err
	}
	if event.Token1, err = addressParam(values, "token1"); err != nil {
		return model.PoolCreatedEvent{}, err
	}
	if event.Pool, err = addressParam(values, "pool"); err != nil {
		return model.PoolCreatedEvent{}, err
	}

	fee, err := uintParam(values, "fee", d.intBits("fee"), math.MaxUint32)
	if err != nil {
		return model.PoolCreatedEvent{}, err
	}
	event.Fee = uint32(fee)

	tickSpacing, err := signedParam(values, "tickSpacing", d.intBits("tickSpacing"), math.MinInt32, math.MaxInt32)
	if err != nil {
		return model.PoolCreatedEvent{}, err
	}
	event.TickSpacing = int32(tickSpacing)

	return event, nil
}

// intBits returns the declared width of an integer parameter.
func (d *EventDecoder) intBits(name string) int {
	for _, arg := range d.event.Inputs {
		if arg.Name != name {
			continue
		}
		if (arg.Type.T == abi.IntTy || arg.Type.T == abi.UintTy) && arg.Type.Size > 0 {
			return arg.Type.Size
		}
	}
	return 256
}

// checkAddressWords rejects address topics and head words with non-zero
// upper bytes; go-ethereum keeps only the low 20 bytes of such words.
func (d *EventDecoder) checkAddressWords(topics []common.Hash, data []byte) error {
	for i, arg := range d.indexed {
		if arg.Type.T == abi.AddressTy && !isAddressWord(topics[i][:]) {
			return fmt.Errorf("%w: %s: dirty address word %s", ErrDecode, arg.Name, topics[i].Hex())
		}
	}

	offset := 0
	for _, arg := range d.event.Inputs.NonIndexed() {
		switch arg.Type.T {
		case abi.ArrayTy, abi.TupleTy:
			// static composites span several head words
			return nil
		case abi.AddressTy:
			if offset+32 <= len(data) && !isAddressWord(data[offset:offset+32]) {
				return fmt.Errorf("%w: %s: dirty address word", ErrDecode, arg.Name)
			}
		}
		offset += 32
	}
	return nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid topic %q: %v", ErrDecode, topic, err)
		}
		if len(data) != common.HashLength {
			return nil, fmt.Errorf("%w: topic length %d", ErrDecode, len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// hexutil.Decode requires the 0x prefix and rejects an empty string.
func normalizeHex(s string) string {
	if s == "" {
		return "0x"
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "0x" + s
	}
	return s
}
