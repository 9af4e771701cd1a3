package storage

import (
	"errors"
	"fmt"

	"poolScope/internal/model"
)

// ErrSerialization marks failures to encode or persist output.
var ErrSerialization = errors.New("serialization")

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// RecordSink receives pool records one at a time. Nothing is visible at the
// output path until Commit; Abort discards everything written so far.
type RecordSink interface {
	Write(record model.PoolInfo) error
	Commit() error
	Abort() error
}

// NewRecordSink opens a sink for the given format.
func NewRecordSink(format, path string) (RecordSink, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(path)
	case FormatJSONL:
		return NewPoolInfoJSONLWriter(path)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
