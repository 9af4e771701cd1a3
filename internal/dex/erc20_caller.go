package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller executes read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ERC20Caller reads string metadata (name, symbol) from token contracts.
type ERC20Caller struct {
	client ContractCaller
}

func NewERC20Caller(client ContractCaller) *ERC20Caller {
	return &ERC20Caller{client: client}
}

// CallString calls a no-argument view method returning string or bytes32.
func (c *ERC20Caller) CallString(ctx context.Context, token common.Address, method string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("chain client is nil")
	}
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return "", fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return "", fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	data, err := stringABI.Pack(method)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", method, err)
	}
	if len(resp) == 0 {
		return "", fmt.Errorf("call %s: empty response", method)
	}

	value, err := unpackString(stringABI, method, resp)
	if err != nil {
		// bytes32 tokens (MKR, SAI) return a single word.
		if len(resp) != 32 {
			return "", err
		}
		value, err = unpackBytes32(bytes32ABI, method, resp)
		if err != nil {
			return "", err
		}
	}
	if err := checkPrintable(value); err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	return value, nil
}

func checkPrintable(value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("invalid utf-8 %q", value)
	}
	for _, r := range value {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("non-printable character %q in %q", r, value)
		}
	}
	return nil
}

func unpackString(parsed abi.ABI, method string, resp []byte) (string, error) {
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return "", fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("unpack %s: %d values", method, len(values))
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unpack %s: unexpected type %T", method, values[0])
	}
	return s, nil
}

func unpackBytes32(parsed abi.ABI, method string, resp []byte) (string, error) {
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return "", fmt.Errorf("unpack %s as bytes32: %w", method, err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("unpack %s: %d values", method, len(values))
	}
	switch v := values[0].(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), nil
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), nil
	default:
		return "", fmt.Errorf("unpack %s: unexpected type %T", method, values[0])
	}
}
