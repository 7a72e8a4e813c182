// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package resultcache persists already-decided WDL probe results so a
// repeated query for the same (material, canonical square tuple) skips
// table decompression entirely. It is backed by
// github.com/cockroachdb/pebble/v2, an embedded LSM-tree store, and is
// entirely optional: a cache miss always falls through to a real probe,
// and nothing under internal/resultcache is on the path of a probe that
// never opens one (SPEC_FULL.md §6[NEW]).
package resultcache

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/v2"
)

// ErrMiss is returned by Get when no entry is recorded for the key.
var ErrMiss = errors.New("resultcache: no entry")

// Cache wraps a pebble database keyed by material + canonicalized square
// tuple, valued by a single WDL byte.
type Cache struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a persistent cache rooted at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("resultcache: opening %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying pebble database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key packs a material key string and a canonical square tuple into a
// single lookup key. squares must already be in the table's canonical
// (post-fold) form, since two positions that canonicalize to the same
// tuple always share a WDL value.
func Key(material string, squares []int8) []byte {
	k := make([]byte, 0, len(material)+1+len(squares))
	k = append(k, material...)
	k = append(k, 0)
	for _, s := range squares {
		k = append(k, byte(s))
	}
	return k
}

// Get looks up key, returning ErrMiss if absent.
func (c *Cache) Get(key []byte) (wdl int8, err error) {
	v, closer, err := c.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, fmt.Errorf("resultcache: get: %w", err)
	}
	defer closer.Close()
	if len(v) != 1 {
		return 0, fmt.Errorf("resultcache: corrupt entry for key")
	}
	return int8(v[0]), nil
}

// Put records wdl for key.
func (c *Cache) Put(key []byte, wdl int8) error {
	return c.db.Set(key, []byte{byte(wdl)}, pebble.NoSync)
}
