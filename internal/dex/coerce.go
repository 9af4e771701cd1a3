package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func addressParam(values map[string]interface{}, name string) (common.Address, error) {
	value, ok := values[name]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: missing parameter %q", ErrDecode, name)
	}
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("%w: %s: unsupported address type %T", ErrDecode, name, value)
	}
}

// uintParam reads an unsigned value that fits both bits (the declared ABI
// width) and max (the Go field).
func uintParam(values map[string]interface{}, name string, bits int, max uint64) (uint64, error) {
	n, err := intParam(values, name)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || n.BitLen() > bits || !n.IsUint64() || n.Uint64() > max {
		return 0, fmt.Errorf("%w: %s out of range: %s", ErrDecode, name, n)
	}
	return n.Uint64(), nil
}

// signedParam reads a two's complement value within [-2^(bits-1), 2^(bits-1)-1]
// and [min, max].
func signedParam(values map[string]interface{}, name string, bits int, min, max int64) (int64, error) {
	n, err := intParam(values, name)
	if err != nil {
		return 0, err
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	lo := new(big.Int).Neg(limit)
	hi := limit.Sub(limit, big.NewInt(1))
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 || !n.IsInt64() || n.Int64() < min || n.Int64() > max {
		return 0, fmt.Errorf("%w: %s out of range: %s", ErrDecode, name, n)
	}
	return n.Int64(), nil
}

// isAddressWord reports whether a 32-byte word holds a left-padded address.
func isAddressWord(word []byte) bool {
	if len(word) != 32 {
		return false
	}
	for _, b := range word[:32-common.AddressLength] {
		if b != 0 {
			return false
		}
	}
	return true
}

func intParam(values map[string]interface{}, name string) (*big.Int, error) {
	value, ok := values[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing parameter %q", ErrDecode, name)
	}
	n, err := asBigInt(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	return n, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
