package model

// LogRecord is the normalized representation of a chain log entry.
// Topics and Data are 0x-prefixed hex as returned by the RPC.
type LogRecord struct {
	BlockNumber *uint64  `json:"block_number,omitempty"`
	BlockHash   string   `json:"block_hash,omitempty"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     uint64   `json:"tx_index"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
}

// Block returns the block number, or 0 for entries without one (pending logs).
func (lr LogRecord) Block() uint64 {
	if lr.BlockNumber == nil {
		return 0
	}
	return *lr.BlockNumber
}

// Topic0 returns the first topic or an empty string.
func (lr LogRecord) Topic0() string {
	if len(lr.Topics) == 0 {
		return ""
	}
	return lr.Topics[0]
}
