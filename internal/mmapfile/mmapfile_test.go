// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package mmapfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenReadsBackMappedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.rtbw")
	want := []byte("some table bytes, long enough to matter")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if f.Size() != int64(len(want)) {
		t.Fatalf("Size() = %d, want %d", f.Size(), len(want))
	}

	got := make([]byte, len(want))
	n, err := f.ReadAt(got, 0)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != len(want) || string(got) != string(want) {
		t.Errorf("ReadAt = %q, want %q", got, want)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.rtbw")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if f.Size() != 0 {
		t.Errorf("Size() = %d, want 0", f.Size())
	}
}

func TestWrapExposesSlice(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	f := Wrap(data)
	defer f.Close()

	if f.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", f.Size())
	}
	got := make([]byte, 2)
	if _, err := f.ReadAt(got, 1); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("ReadAt = %v, want [2 3]", got)
	}
}

func TestReadAtAfterCloseErrors(t *testing.T) {
	f := Wrap([]byte{1, 2, 3})
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := f.ReadAt(make([]byte, 1), 0); err != ErrClosed {
		t.Errorf("got %v, want ErrClosed", err)
	}
}
