// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package manager discovers table files on disk, lazily memory-maps and
// parses them, and keeps a cache of the opened result so repeated probes
// against the same material reuse one parse (SPEC_FULL.md §6). Opening is
// serialized; reading an already-open table is not, matching the core's
// own concurrency contract (SPEC_FULL.md §5).
package manager

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/tbprobe/syzygy/internal/mmapfile"
)

// OpenFunc parses a table file's bytes into a *T, given the material key
// string the file was found under. The bytes are a heap copy read out of
// the memory-mapped file, not the mapping itself. It is supplied by the
// caller so this package does not import the root package (which would
// create an import cycle).
type OpenFunc[T any] func(material string, data []byte) (*T, error)

// cacheCapacity bounds the admission cache's hot set, in the style of the
// teacher's BEGB-driven memLimit: a single env var, parsed once, panicking
// only on a malformed (not missing) value.
var cacheCapacity = calcCacheCapacity()

func calcCacheCapacity() int {
	if e := os.Getenv("SYZYGY_CACHE_TABLES"); e != "" {
		f, err := strconv.ParseFloat(e, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
			panic("malformed SYZYGY_CACHE_TABLES environment variable, should be a positive integer: " + e)
		}
		return int(f)
	}
	return 64
}

// entry is one opened table plus the mapped file backing it.
type entry[T any] struct {
	file  *mmapfile.File
	table *T
}

// Manager indexes a directory of table files by material key string (e.g.
// "KQvKR") and opens them on demand.
type Manager[T any] struct {
	dir    string
	suffix string
	open   OpenFunc[T]

	mu     sync.Mutex
	paths  map[string]string // material key -> file path
	cache  *tinylfu.T        // admission-filtered hot set, keyed by material
	opened map[string]*entry[T]
}

// New scans dir for files matching *.suffix (e.g. "rtbw") using a doublestar
// glob so nested layouts (some distributions split subdirectories by piece
// count) are discovered too, and returns a Manager ready to open them
// lazily.
func New[T any](dir, suffix string, openFn OpenFunc[T]) (*Manager[T], error) {
	m := &Manager[T]{
		dir:    dir,
		suffix: suffix,
		open:   openFn,
		paths:  make(map[string]string),
		cache:  tinylfu.New(cacheCapacity, cacheCapacity*10),
		opened: make(map[string]*entry[T]),
	}

	pattern := "**/*." + suffix
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("manager: scanning %s: %w", dir, err)
	}
	for _, rel := range matches {
		base := filepath.Base(rel)
		key := base[:len(base)-len(suffix)-1]
		m.paths[key] = filepath.Join(dir, rel)
	}

	slog.Info("manager scanned table directory", "dir", dir, "suffix", suffix, "count", len(m.paths))
	return m, nil
}

// Has reports whether a table file exists on disk for material (without
// opening it).
func (m *Manager[T]) Has(material string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.paths[material]
	return ok
}

// cacheKey derives a fixed-width hash of material for use as the admission
// cache's key, so repeated lookups of the same long material string don't
// keep rehashing it internally on every comparison.
func cacheKey(material string) tinylfu.Key {
	return tinylfu.Key(strconv.FormatUint(xxhash.Sum64String(material), 16))
}

// Open returns the parsed table for material, opening and mmap'ing it on
// first use and handing a copy of its bytes to the OpenFunc. The admission
// cache decides whether a freshly opened table is worth promoting into the
// hot set; either way the table and its mapped file stay in opened until
// Close.
func (m *Manager[T]) Open(material string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cacheKey(material)
	if v, ok := m.cache.Get(key); ok {
		if e, ok := v.(*entry[T]); ok {
			return e.table, nil
		}
	}
	if e, ok := m.opened[material]; ok {
		m.cache.Add(key, e)
		return e.table, nil
	}

	path, ok := m.paths[material]
	if !ok {
		return nil, fmt.Errorf("manager: no table file for material %s", material)
	}

	f, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manager: opening %s: %w", path, err)
	}

	buf := make([]byte, f.Size())
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("manager: reading %s: %w", path, err)
	}

	table, err := m.open(material, buf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("manager: parsing %s: %w", path, err)
	}

	e := &entry[T]{file: f, table: table}
	m.opened[material] = e
	m.cache.Add(key, e)

	slog.Debug("manager opened table", "material", material, "path", path, "bytes", f.Size())
	return table, nil
}

// Close releases every mapped file the manager has opened.
func (m *Manager[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, e := range m.opened {
		if err := e.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.opened = make(map[string]*entry[T])
	return firstErr
}
