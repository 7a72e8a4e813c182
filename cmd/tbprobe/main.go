// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Command tbprobe is a thin CLI over the syzygy package: point it at a
// directory of .rtbw tables and a FEN, and it prints the WDL value. It is
// ambient tooling, not part of the core (SPEC_FULL.md §0).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tbprobe/syzygy"
	"github.com/tbprobe/syzygy/internal/manager"
	"github.com/tbprobe/syzygy/internal/resultcache"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <tables-dir> <fen>\n", os.Args[0])
		os.Exit(2)
	}
	dir, fen := os.Args[1], os.Args[2]

	board, err := parseFEN(fen)
	if err != nil {
		slog.Error("invalid FEN", "fen", fen, "err", err)
		os.Exit(1)
	}

	key := syzygy.MaterialFromBoard(board)
	normKey, _ := key.Normalize()

	mgr, err := manager.New(dir, "rtbw", func(material string, data []byte) (*syzygy.Table, error) {
		return syzygy.Open(syzygy.Standard, normKey, data)
	})
	if err != nil {
		slog.Error("opening table directory", "dir", dir, "err", err)
		os.Exit(1)
	}
	defer mgr.Close()

	table, err := mgr.Open(normKey.String())
	if err != nil {
		slog.Error("no table for material", "material", normKey.String(), "err", err)
		os.Exit(1)
	}

	cache, err := resultcache.Open(filepath.Join(dir, ".resultcache"))
	if err != nil {
		slog.Error("opening result cache", "err", err)
		os.Exit(1)
	}
	defer cache.Close()

	wdl, err := probeCached(cache, table, board, normKey.String())
	if err != nil {
		slog.Error("probe failed", "material", normKey.String(), "err", err)
		os.Exit(1)
	}

	fmt.Println(wdl)
}

// probeCached checks cache before paying for syzygy.Probe's sparse-index
// walk and Huffman decode, and records the result on a miss. The cache key
// is derived from the same canonicalization Probe itself performs
// (syzygy.CanonicalSquares) plus the side to move and color flip that pick
// Probe's side table, so a hit here matches what a full Probe would have
// returned.
func probeCached(cache *resultcache.Cache, table *syzygy.Table, board syzygy.Board, material string) (syzygy.WDL, error) {
	_, squares, err := syzygy.CanonicalSquares(table, board)
	if err != nil {
		return 0, err
	}
	_, flipped := syzygy.MaterialFromBoard(board).Normalize()
	flipFlag := int8(0)
	if flipped {
		flipFlag = 1
	}
	key := resultcache.Key(material, append(squaresToInt8(squares), int8(board.Turn()), flipFlag))

	if cached, err := cache.Get(key); err == nil {
		slog.Info("resultcache hit", "material", material)
		return syzygy.WDL(cached), nil
	}

	wdl, err := syzygy.Probe(table, board)
	if err != nil {
		return 0, err
	}
	if err := cache.Put(key, int8(wdl)); err != nil {
		slog.Warn("resultcache put failed", "material", material, "err", err)
	}
	return wdl, nil
}

func squaresToInt8(squares []syzygy.Square) []int8 {
	out := make([]int8, len(squares))
	for i, sq := range squares {
		out[i] = int8(sq)
	}
	return out
}
