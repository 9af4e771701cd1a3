package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Param is one named event parameter.
type Param struct {
	Name    string
	Type    string
	Indexed bool
}

// Schema is an ordered event parameter list.
type Schema struct {
	Name   string
	Params []Param
}

// PoolCreatedSchema is the Uniswap V3 factory event
// PoolCreated(address indexed token0, address indexed token1, uint24 indexed fee, int24 tickSpacing, address pool).
var PoolCreatedSchema = Schema{
	Name: "PoolCreated",
	Params: []Param{
		{Name: "token0", Type: "address", Indexed: true},
		{Name: "token1", Type: "address", Indexed: true},
		{Name: "fee", Type: "uint24", Indexed: true},
		{Name: "tickSpacing", Type: "int24"},
		{Name: "pool", Type: "address"},
	},
}

// Event compiles the schema into a go-ethereum event, which also fixes its
// signature hash (topic0).
func (s Schema) Event() (abi.Event, error) {
	if s.Name == "" {
		return abi.Event{}, fmt.Errorf("event name is required")
	}
	inputs := make(abi.Arguments, 0, len(s.Params))
	seen := make(map[string]struct{}, len(s.Params))
	for _, p := range s.Params {
		if p.Name == "" {
			return abi.Event{}, fmt.Errorf("%s: unnamed parameter", s.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return abi.Event{}, fmt.Errorf("%s: duplicate parameter %q", s.Name, p.Name)
		}
		seen[p.Name] = struct{}{}

		typ, err := abi.NewType(p.Type, "", nil)
		if err != nil {
			return abi.Event{}, fmt.Errorf("%s.%s: %w", s.Name, p.Name, err)
		}
		inputs = append(inputs, abi.Argument{Name: p.Name, Type: typ, Indexed: p.Indexed})
	}
	return abi.NewEvent(s.Name, s.Name, false, inputs), nil
}
