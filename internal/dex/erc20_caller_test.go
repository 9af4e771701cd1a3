package dex

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type fakeContractCaller struct {
	responses map[string][]byte
	err       error
}

func (f *fakeContractCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	for method, resp := range f.responses {
		parsed, _ := erc20ABIStringInstance()
		if bytes.Equal(msg.Data, parsed.Methods[method].ID) {
			return resp, nil
		}
	}
	return nil, nil
}

func packString(t *testing.T, s string) []byte {
	t.Helper()
	typ, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	out, err := abi.Arguments{{Type: typ}}.Pack(s)
	require.NoError(t, err)
	return out
}

func TestERC20CallerString(t *testing.T) {
	caller := NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{
		"name":   packString(t, "Wrapped Ether"),
		"symbol": packString(t, "WETH"),
	}})

	name, err := caller.CallString(context.Background(), weth, "name")
	require.NoError(t, err)
	require.Equal(t, "Wrapped Ether", name)

	symbol, err := caller.CallString(context.Background(), weth, "symbol")
	require.NoError(t, err)
	require.Equal(t, "WETH", symbol)
}

func TestERC20CallerBytes32Fallback(t *testing.T) {
	var word [32]byte
	copy(word[:], "MKR")
	caller := NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{"symbol": word[:]}})

	symbol, err := caller.CallString(context.Background(), usdc, "symbol")
	require.NoError(t, err)
	require.Equal(t, "MKR", symbol)
}

func TestERC20CallerFailures(t *testing.T) {
	_, err := NewERC20Caller(&fakeContractCaller{}).CallString(context.Background(), usdc, "name")
	require.ErrorContains(t, err, "empty response")

	_, err = NewERC20Caller(&fakeContractCaller{err: errors.New("execution reverted")}).CallString(context.Background(), usdc, "name")
	require.ErrorContains(t, err, "execution reverted")

	_, err = NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{"name": {0x01, 0x02}}}).CallString(context.Background(), usdc, "name")
	require.Error(t, err)

	number := common.BigToHash(big.NewInt(5))
	_, err = NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{"name": number[:]}}).CallString(context.Background(), usdc, "name")
	require.ErrorContains(t, err, "non-printable")

	var word [64]byte
	copy(word[:], "MKR")
	_, err = NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{"symbol": word[:]}}).CallString(context.Background(), usdc, "symbol")
	require.Error(t, err)

	_, err = NewERC20Caller(&fakeContractCaller{responses: map[string][]byte{"symbol": packString(t, "US\x00DC")}}).CallString(context.Background(), usdc, "symbol")
	require.ErrorContains(t, err, "non-printable")

	_, err = NewERC20Caller(&fakeContractCaller{}).CallString(context.Background(), usdc, "decimals")
	require.Error(t, err)

	_, err = NewERC20Caller(nil).CallString(context.Background(), usdc, "name")
	require.Error(t, err)
}
