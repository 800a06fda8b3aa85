// Package pkg provides reusable utilities for purebundle.
package pkg

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// FileSpill is an append-only list of T kept in a gob file, so a run over a
// large tree does not hold every per-file record in memory.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
	// Remove closes the spill and deletes its backing file.
	Remove() error
}

type fileSpillImpl[T any] struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
}

// NewFileSpill creates a FileSpill backed by a new file in dir. An empty dir
// means the system temp directory.
func NewFileSpill[T any](dir string) (FileSpill[T], error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "purebundle-spill-*.gob")
	if err != nil {
		slog.Error("failed to create spill file", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	buf := bufio.NewWriter(file)

	slog.Debug("created filespill", "path", file.Name())

	return &fileSpillImpl[T]{
		path:    file.Name(),
		file:    file,
		buf:     buf,
		encoder: gob.NewEncoder(buf),
	}, nil
}

// Append implements FileSpill.
func (f *fileSpillImpl[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errors.New("append to closed filespill")
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	f.length++

	return nil
}

// Path implements FileSpill.
func (f *fileSpillImpl[T]) Path() string {
	return f.path
}

// Len implements FileSpill.
func (f *fileSpillImpl[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

// Get implements FileSpill.
func (f *fileSpillImpl[T]) Get(index uint64) (T, error) {
	var found T

	err := f.scan(index+1, func(i uint64, item T) error {
		if i == index {
			found = item
		}

		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return found, nil
}

// Range implements FileSpill. Items are decoded in append order.
func (f *fileSpillImpl[T]) Range(fn func(index uint64, item T) error) error {
	return f.scan(0, fn)
}

// scan decodes the first limit items, or all of them when limit is zero.
func (f *fileSpillImpl[T]) scan(limit uint64, fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := f.length
	if limit > 0 {
		if limit > f.length {
			slog.Warn("get index out of bounds", "path", f.path, "index", limit-1, "length", f.length)
			return fmt.Errorf("index %d out of bounds (length %d)", limit-1, f.length)
		}

		count = limit
	}

	if !f.closed {
		if err := f.buf.Flush(); err != nil {
			return fmt.Errorf("failed to flush filespill: %w", err)
		}
	}

	file, err := os.Open(f.path)
	if err != nil {
		slog.Error("failed to open filespill", "path", f.path, "error", err)
		return fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close file", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(bufio.NewReader(file))

	for i := range count {
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item", "path", f.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements FileSpill. Items stay readable after Close.
func (f *fileSpillImpl[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closeLocked()
}

func (f *fileSpillImpl[T]) closeLocked() error {
	if f.closed {
		return nil
	}

	f.closed = true

	if err := f.buf.Flush(); err != nil {
		_ = f.file.Close()
		return fmt.Errorf("failed to flush filespill: %w", err)
	}

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close file", "path", f.path, "error", err)
		return err
	}

	slog.Debug("closed filespill", "path", f.path, "length", f.length)

	return nil
}

// Remove implements FileSpill.
func (f *fileSpillImpl[T]) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	closeErr := f.closeLocked()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return closeErr
}
