package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// atomicFile buffers writes into <path>.tmp and renames it over path on commit.
type atomicFile struct {
	path   string
	tmp    string
	file   *os.File
	writer *bufio.Writer
	done   bool
}

func createAtomic(path string) (*atomicFile, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path is empty", ErrSerialization)
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create dir: %v", ErrSerialization, err)
		}
	}

	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open file: %v", ErrSerialization, err)
	}
	return &atomicFile{
		path:   path,
		tmp:    tmp,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (f *atomicFile) Write(p []byte) (int, error) {
	return f.writer.Write(p)
}

func (f *atomicFile) commit() error {
	if f.done {
		return nil
	}
	f.done = true

	if err := f.writer.Flush(); err != nil {
		f.file.Close()
		os.Remove(f.tmp)
		return fmt.Errorf("%w: flush: %v", ErrSerialization, err)
	}
	if err := f.file.Close(); err != nil {
		os.Remove(f.tmp)
		return fmt.Errorf("%w: close: %v", ErrSerialization, err)
	}
	if err := os.Rename(f.tmp, f.path); err != nil {
		os.Remove(f.tmp)
		return fmt.Errorf("%w: rename: %v", ErrSerialization, err)
	}
	return nil
}

func (f *atomicFile) abort() error {
	if f.done {
		return nil
	}
	f.done = true

	f.file.Close()
	if err := os.Remove(f.tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
