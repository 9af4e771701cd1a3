package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"poolScope/internal/model"
)

// CSVWriter writes pool records as CSV with a header row.
type CSVWriter struct {
	out *atomicFile
	csv *csv.Writer
}

// NewCSVWriter starts a CSV output at path. The header is written
// immediately, so an empty run still produces a valid file.
func NewCSVWriter(path string) (*CSVWriter, error) {
	out, err := createAtomic(path)
	if err != nil {
		return nil, err
	}
	w := &CSVWriter{out: out, csv: csv.NewWriter(out)}
	if err := w.csv.Write(model.PoolInfoColumns); err != nil {
		out.abort()
		return nil, fmt.Errorf("%w: write header: %v", ErrSerialization, err)
	}
	return w, nil
}

func (w *CSVWriter) Write(record model.PoolInfo) error {
	if err := w.csv.Write(record.Row()); err != nil {
		return fmt.Errorf("%w: write row: %v", ErrSerialization, err)
	}
	return nil
}

// Commit flushes and moves the file into place.
func (w *CSVWriter) Commit() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.out.abort()
		return fmt.Errorf("%w: flush csv: %v", ErrSerialization, err)
	}
	return w.out.commit()
}

func (w *CSVWriter) Abort() error {
	return w.out.abort()
}

// ReadPoolInfoCSV parses a file written by CSVWriter.
func ReadPoolInfoCSV(r io.Reader) ([]model.PoolInfo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(model.PoolInfoColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, model.PoolInfoColumns) {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	var records []model.PoolInfo
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		record, err := model.ParsePoolInfoRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
}

// ReadPoolInfoCSVFile opens path and parses it with ReadPoolInfoCSV.
func ReadPoolInfoCSVFile(path string) ([]model.PoolInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadPoolInfoCSV(file)
}
