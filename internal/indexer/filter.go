package indexer

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// FilterSpec selects the logs emitted by one contract from FromBlock to the
// chain head. A zero Topic0 disables topic filtering.
type FilterSpec struct {
	Address   common.Address
	FromBlock uint64
	Topic0    common.Hash
}

// Query returns the open-ended filter (no ToBlock).
func (f FilterSpec) Query() ethereum.FilterQuery {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(f.FromBlock),
		Addresses: []common.Address{f.Address},
	}
	if f.Topic0 != (common.Hash{}) {
		query.Topics = [][]common.Hash{{f.Topic0}}
	}
	return query
}

// Window returns the same filter bounded to [from, to].
func (f FilterSpec) Window(from, to uint64) ethereum.FilterQuery {
	query := f.Query()
	query.FromBlock = new(big.Int).SetUint64(from)
	query.ToBlock = new(big.Int).SetUint64(to)
	return query
}
