package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLogRecordJSONRoundTrip(t *testing.T) {
	block := uint64(12369621)
	original := LogRecord{
		BlockNumber: &block,
		BlockHash:   "0xabc123",
		TxHash:      "0xdef456",
		TxIndex:     7,
		LogIndex:    12,
		Address:     "0x1F98431c8aD98523631AE4a59f267346ea31F984",
		Topics:      []string{"0xaaa", "0xbbb"},
		Data:        "0xdeadbeef",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded LogRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestLogRecordMissingBlock(t *testing.T) {
	var decoded LogRecord
	if err := json.Unmarshal([]byte(`{"address":"0x01","topics":[]}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.BlockNumber != nil {
		t.Fatalf("expected nil block number")
	}
	if decoded.Block() != 0 {
		t.Fatalf("missing block should read as 0, got %d", decoded.Block())
	}
	if decoded.Topic0() != "" {
		t.Fatalf("expected empty topic0")
	}
}
