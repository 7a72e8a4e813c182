// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package resultcache

import (
	"path/filepath"
	"testing"
)

func TestKeyDistinguishesMaterialAndSquares(t *testing.T) {
	a := Key("KQvKR", []int8{1, 2, 3})
	b := Key("KQvKR", []int8{1, 2, 4})
	c := Key("KRvKQ", []int8{1, 2, 3})

	if string(a) == string(b) {
		t.Error("keys with different square tuples should differ")
	}
	if string(a) == string(c) {
		t.Error("keys with different material should differ")
	}
}

func TestPutThenGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := Key("KQvKR", []int8{4, 60})
	if err := c.Put(key, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}
}

func TestGetMiss(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Get(Key("KQvKR", []int8{1})); err != ErrMiss {
		t.Errorf("got %v, want ErrMiss", err)
	}
}
