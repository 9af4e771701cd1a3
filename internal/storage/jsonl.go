package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"poolScope/internal/model"
)

// JSONLWriter writes one JSON value per line.
type JSONLWriter struct {
	out *atomicFile
}

func NewJSONLWriter(path string) (*JSONLWriter, error) {
	out, err := createAtomic(path)
	if err != nil {
		return nil, err
	}
	return &JSONLWriter{out: out}, nil
}

func (w *JSONLWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrSerialization, err)
	}
	line = append(line, '\n')
	if _, err := w.out.Write(line); err != nil {
		return fmt.Errorf("%w: write: %v", ErrSerialization, err)
	}
	return nil
}

func (w *JSONLWriter) Commit() error {
	return w.out.commit()
}

func (w *JSONLWriter) Abort() error {
	return w.out.abort()
}

// PoolInfoJSONLWriter is a RecordSink writing JSON lines.
type PoolInfoJSONLWriter struct {
	*JSONLWriter
}

func NewPoolInfoJSONLWriter(path string) (*PoolInfoJSONLWriter, error) {
	w, err := NewJSONLWriter(path)
	if err != nil {
		return nil, err
	}
	return &PoolInfoJSONLWriter{JSONLWriter: w}, nil
}

func (w *PoolInfoJSONLWriter) Write(record model.PoolInfo) error {
	return w.JSONLWriter.Write(record)
}

// ReadLogRecords loads raw logs written by the fetch command.
func ReadLogRecords(path string) ([]model.LogRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []model.LogRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return records, nil
}
