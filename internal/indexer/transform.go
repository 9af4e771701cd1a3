package indexer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"poolScope/internal/model"
)

func buildLogRecord(log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	record := model.LogRecord{
		TxHash:   log.TxHash.Hex(),
		TxIndex:  uint64(log.TxIndex),
		LogIndex: uint64(log.Index),
		Address:  log.Address.Hex(),
		Topics:   topics,
		Data:     hexutil.Encode(log.Data),
		Removed:  log.Removed,
	}
	// Pending logs carry no block hash and a meaningless block number.
	if log.BlockHash != (common.Hash{}) {
		block := log.BlockNumber
		record.BlockNumber = &block
		record.BlockHash = log.BlockHash.Hex()
	}
	return record
}
