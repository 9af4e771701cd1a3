package model

import "github.com/ethereum/go-ethereum/common"

// PoolCreatedEvent is a decoded factory PoolCreated log.
type PoolCreatedEvent struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickSpacing int32
	Pool        common.Address
	BlockNumber uint64
}
