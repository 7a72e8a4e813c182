// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package syzygy

import (
	"bytes"
	"fmt"

	"github.com/tbprobe/syzygy/internal/groups"
	"github.com/tbprobe/syzygy/internal/pairs"
	"github.com/tbprobe/syzygy/internal/pieces"
)

const (
	layoutSplit    = 1 << 0
	layoutHasPawns = 1 << 1
)

// SideData is one (file, side)'s fully-built decode parameters: the group
// layout that turns squares into an index, and the pairs-data that turns
// an index into a decompressed byte.
type SideData struct {
	Groups *groups.Descriptor
	Pairs  *pairs.Data
}

// FileEntry is one material-file's side data: 1 entry if the material is
// symmetric, else 2 (white-to-move and black-to-move).
type FileEntry struct {
	Sides [2]*SideData
}

// Table is a fully parsed, read-only Syzygy table for one material
// configuration. It is constructed once from an immutable byte range and
// never mutated afterward (SPEC_FULL.md §3 lifecycle, §5 concurrency).
type Table struct {
	Variant   Variant
	Key       MaterialKey // as stored on disk, before query-time flipping
	HasPawns  bool
	Symmetric bool
	Files     []FileEntry // len 1 (pawnless) .. 4 (pawnful)
}

// Open parses a WDL table from a byte range obtained for exactly the
// material key the caller expects. It checks the variant's WDL magic only;
// DTZ tables are not handled.
func Open(v Variant, key MaterialKey, data []byte) (*Table, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: header truncated", ErrCorruptedTable)
	}
	if !bytes.Equal(data[0:4], v.WDLMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptedTable)
	}

	layout := data[4]
	order := data[5]
	hasPawns := layout&layoutHasPawns != 0
	split := layout&layoutSplit != 0

	if hasPawns != key.HasPawns() {
		return nil, fmt.Errorf("%w: layout/material pawn mismatch", ErrCorruptedTable)
	}

	n := 0
	for n < pieces.MaxPieces && 6+n < len(data) && data[6+n] != 0 {
		n++
	}
	listBytes := data[6 : 6+n]
	afterList := int64(6 + n)
	if n < pieces.MaxPieces {
		afterList++ // consume the zero terminator byte
	}
	if afterList%2 != 0 {
		afterList++ // pad to an even boundary
	}

	symmetric := key.IsSymmetric() && !split
	numSides := 2
	if symmetric {
		numSides = 1
	}
	numFiles := 1
	if hasPawns {
		numFiles = 4
	}

	t := &Table{Variant: v, Key: key, HasPawns: hasPawns, Symmetric: symmetric}
	off := afterList

	for f := 0; f < numFiles; f++ {
		var fe FileEntry
		for s := 0; s < numSides; s++ {
			plist, err := pieces.Parse(listBytes, pieces.Color(s))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptedTable, err)
			}
			if len(plist) == 0 {
				return nil, fmt.Errorf("%w: empty piece list", ErrCorruptedTable)
			}

			gp := groups.Params{
				HasPawns:       hasPawns,
				UniquePieces:   key.UniquePieces(),
				MinLikeMan:     key.MinLikeMan(),
				ConnectedKings: v.ConnectedKings,
				Order:          order,
				BlackSide:      s == 1,
			}
			gd, err := groups.Compute(plist, gp)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptedTable, err)
			}

			pd, next, err := pairs.Parse(data, off)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptedTable, err)
			}
			tableSize := gd.Factors[len(gd.Factors)-1]
			off, err = pd.FinishLayout(next, tableSize)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptedTable, err)
			}

			fe.Sides[s] = &SideData{Groups: gd, Pairs: pd}
		}
		if symmetric {
			// Only one side entry is stored on disk; Probe's stm selector
			// still produces 0 or 1 depending on whose turn it is, so both
			// slots must resolve to it.
			fe.Sides[1] = fe.Sides[0]
		}
		t.Files = append(t.Files, fe)
	}

	return t, nil
}
