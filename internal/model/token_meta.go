package model

import "github.com/ethereum/go-ethereum/common"

// TokenField is a best-effort metadata value. A field that could not be
// fetched keeps an empty Value with Resolved=false and the cause in Err.
type TokenField struct {
	Value    string
	Resolved bool
	Err      error
}

// ResolvedField wraps a value returned by the token contract.
func ResolvedField(value string) TokenField {
	return TokenField{Value: value, Resolved: true}
}

// DefaultedField records a failed lookup.
func DefaultedField(err error) TokenField {
	return TokenField{Err: err}
}

// TokenMeta captures ERC20 display metadata.
type TokenMeta struct {
	Address common.Address
	Name    TokenField
	Symbol  TokenField
}
