// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package mmapfile memory-maps a table file read-only, the way the
// external tablebase manager is expected to hand a byte range to the core
// (SPEC_FULL.md §1, §6). It falls back to a plain in-memory read when the
// platform has no mmap support or the caller hands it something other
// than a regular file.
package mmapfile

import (
	"bytes"
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by any operation on a File after Close.
var ErrClosed = errors.New("mmapfile: use of closed file")

// File is a read-only, memory-mapped byte range satisfying io.ReaderAt.
// It is safe for concurrent use by any number of probes, matching the
// core's "immutable byte range, no interior mutability" contract
// (SPEC_FULL.md §5).
type File struct {
	f      *os.File
	data   []byte // mmap'd, or a plain read fallback
	mapped bool
	closed bool
}

// Open memory-maps path read-only. If mmap is unavailable for this file
// (e.g. zero length, or the platform refuses it), the whole file is read
// into memory instead; callers see an identical io.ReaderAt either way.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return &File{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		defer f.Close()
		buf, rerr := io.ReadAll(io.NewSectionReader(f, 0, size))
		if rerr != nil {
			return nil, rerr
		}
		return &File{data: buf}, nil
	}

	return &File{f: f, data: data, mapped: true}, nil
}

// Wrap exposes an already in-memory byte slice (e.g. in tests) as a File,
// with no underlying OS file to close.
func Wrap(data []byte) *File {
	return &File{data: data}
}

func (m *File) Size() int64 { return int64(len(m.data)) }

func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if m.data == nil && off == 0 && len(p) == 0 {
		return 0, nil
	}
	r := bytes.NewReader(m.data)
	return r.ReadAt(p, off)
}

// Close unmaps the file, if it was mapped, and closes the underlying fd.
// Calling Close more than once is a no-op.
func (m *File) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.mapped {
		err = unix.Munmap(m.data)
	}
	m.data = nil
	if m.f != nil {
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
