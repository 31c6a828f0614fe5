// Package mmap provides read-only memory-mapped file access.
package mmap

import (
	"fmt"
	"io"
	"os"
)

// Map is a file mapped read-only into memory. It implements io.ReaderAt
// over the mapping, so readers can address the file without seeking.
type Map struct {
	f    *os.File
	data []byte
	size int64
}

// Open maps the file at path. The mapping is advised for sequential
// access, matching how column files are read.
func Open(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := stat.Size()
	if size == 0 {
		return &Map{f: f}, nil
	}

	data, err := mmap(int(f.Fd()), 0, int(size), ProtRead, MapShared)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	_ = madvise(data, MadvSequential)

	return &Map{f: f, data: data, size: size}, nil
}

// ReadAt copies from the mapping. Reads past the end return io.EOF.
func (m *Map) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= m.size {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the mapped file's size.
func (m *Map) Size() int64 { return m.size }

// Bytes returns the raw mapping. Valid until Close.
func (m *Map) Bytes() []byte { return m.data }

// Close unmaps the file and closes it. Safe to call more than once.
func (m *Map) Close() error {
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}
