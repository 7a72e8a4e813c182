// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package syzygy

import (
	"fmt"
	"sort"

	"github.com/tbprobe/syzygy/internal/bitstream"
	"github.com/tbprobe/syzygy/internal/pairs"
	"github.com/tbprobe/syzygy/internal/pieces"
	"github.com/tbprobe/syzygy/internal/tablenum"
)

// Probe answers a WDL query against table for the position held by b. It is
// a pure function of (table bytes, position): no probe mutates table state,
// and any number of probes may run concurrently on the same table
// (SPEC_FULL.md §4.5, §5).
func Probe(table *Table, b Board) (WDL, error) {
	normKey, side, squares, err := canonicalPosition(table, b)
	if err != nil {
		return 0, err
	}

	idx, err := computeIndex(squares, side, normKey)
	if err != nil {
		return 0, wrapProbeErr("wdl", normKey.String(), err)
	}

	value, err := decompressAt(side.Pairs, idx)
	if err != nil {
		return 0, wrapProbeErr("wdl", normKey.String(), fmt.Errorf("%w: %v", ErrCorruptedTable, err))
	}

	wdl, err := wdlFromByte(value)
	if err != nil {
		return 0, wrapProbeErr("wdl", normKey.String(), err)
	}
	return wdl, nil
}

// CanonicalSquares resolves b against table as far as the canonical
// (post-fold) square tuple, without decompressing a value. Two positions
// that canonicalize to the same (material, squares) pair decode to the same
// WDL when Probe also reads them from the same side table, which depends on
// the side to move and on whether the board's colors were flipped to match
// the table; the returned values do not include that choice. Together with
// it, they form a key internal/resultcache.Key can use for a cache lookup
// that skips Probe's decompression step on a hit.
func CanonicalSquares(table *Table, b Board) (string, []Square, error) {
	normKey, _, squares, err := canonicalPosition(table, b)
	if err != nil {
		return "", nil, err
	}
	return normKey.String(), squares, nil
}

// canonicalPosition is the shared prefix of Probe and CanonicalSquares: it
// resolves the position's material and side data, locates every piece's
// square, and applies the canonicalizing folds.
func canonicalPosition(table *Table, b Board) (MaterialKey, *SideData, []Square, error) {
	if b.CastlingRights() != 0 {
		return MaterialKey{}, nil, nil, ErrCastling
	}
	if b.PieceCount() > MaxPieces {
		return MaterialKey{}, nil, nil, ErrTooManyPieces
	}

	key := MaterialFromBoard(b)
	normKey, flipped := key.Normalize()
	if !normKey.Equal(table.Key) {
		return MaterialKey{}, nil, nil, &MissingTableError{Metric: "wdl", Material: normKey.String()}
	}

	symmetricBtm := table.Symmetric && b.Turn() == Black
	blackStronger := flipped
	stm := (symmetricBtm || blackStronger) != (b.Turn() == White)

	sideIdx := 0
	if stm {
		sideIdx = 1
	}
	if len(table.Files) == 0 {
		return normKey, nil, nil, wrapProbeErr("wdl", normKey.String(), fmt.Errorf("%w: empty table", ErrCorruptedTable))
	}
	side := table.Files[0].Sides[sideIdx]
	if side == nil {
		return normKey, nil, nil, wrapProbeErr("wdl", normKey.String(), fmt.Errorf("%w: missing side data", ErrCorruptedTable))
	}

	flip := symmetricBtm || blackStronger
	squares, err := buildSquares(b, side.Groups.Pieces, flip)
	if err != nil {
		return normKey, nil, nil, wrapProbeErr("wdl", normKey.String(), err)
	}

	canonicalize(squares)
	return normKey, side, squares, nil
}

// buildSquares locates, in plist order, the board square of each piece the
// table's encoding expects, flipping color first if flip is set. A piece
// whose square cannot be found (already claimed by an earlier slot, or
// absent from the board) is a probe failure.
func buildSquares(b Board, plist []pieces.Piece, flip bool) ([]Square, error) {
	squares := make([]Square, len(plist))
	taken := map[Square]bool{}

	for i, p := range plist {
		color := Color(p.Color)
		if flip {
			color = color.Other()
		}
		role := Role(p.Role)

		found := NoSquare
		for _, sq := range b.SquaresOf(color, role) {
			if !taken[sq] {
				found = sq
				break
			}
		}
		if found == NoSquare {
			return nil, fmt.Errorf("%w: could not locate piece %d of table encoding", ErrCorruptedTable, i)
		}
		squares[i] = found
		taken[found] = true
	}
	return squares, nil
}

// canonicalize applies the horizontal, vertical, and diagonal folds in
// place (SPEC_FULL.md §4.5 steps 4-6). Only squares[0] (the first leading
// piece) decides the diagonal fold: if it sits on the a1-h8 diagonal, it is
// left on it, since a reflection fixing squares[0] is then a symmetry of
// the rest of the leading group, handled separately by the on-diagonal
// leading-index formulas (onDiagonalIndex, tablenum.MapKK's on-diagonal
// classes) rather than folded away here.
func canonicalize(squares []Square) {
	if squares[0].File() >= 4 {
		for i := range squares {
			squares[i] = squares[i].MirrorHorizontal()
		}
	}
	if squares[0].Rank() >= 4 {
		for i := range squares {
			squares[i] = squares[i].MirrorVertical()
		}
	}
	if squares[0].OffDiagonal() && squares[0].File() > squares[0].Rank() {
		for i := range squares {
			squares[i] = squares[i].MirrorDiagonal()
		}
	}
}

func computeIndex(squares []Square, side *SideData, key MaterialKey) (uint64, error) {
	lens := side.Groups.Lens
	factors := side.Groups.Factors

	var idx uint64
	var err error
	if key.UniquePieces() > 2 {
		idx, err = leadingIndexThree(squares)
	} else {
		idx, err = leadingIndexTwo(squares, side.Groups.Pieces)
	}
	if err != nil {
		return 0, err
	}
	idx *= factors[0]

	groupSq := lens[0]
	for g := 1; g < len(lens); g++ {
		group := append([]Square(nil), squares[groupSq:groupSq+lens[g]]...)
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })

		var n uint64
		for i, sq := range group {
			adjust := 0
			for _, placed := range squares[:groupSq] {
				if placed < sq {
					adjust++
				}
			}
			n += tablenum.Binomial(int(sq)-adjust, i+1)
		}
		idx += n * factors[g]
		groupSq += lens[g]
	}

	return idx, nil
}

// leadingIndexThree encodes the 3-unique-piece leading group
// (SPEC_FULL.md §4.5). squares[0] off the a1-h8 diagonal uses the
// off-diagonal triangle formula, landing in [0, SizeThreeUniqueOffDiag).
// squares[0] on the diagonal uses onDiagonalIndex instead, landing in
// [SizeThreeUniqueOffDiag, SizeThreeUnique) -- the two ranges partition
// SizeThreeUnique exactly, so neither branch can overflow the table.
func leadingIndexThree(squares []Square) (uint64, error) {
	s0, s1, s2 := squares[0], squares[1], squares[2]
	if !s0.OffDiagonal() {
		return onDiagonalIndex(s0, s1, s2)
	}
	return triangleIndex(s0, s1, s2), nil
}

func triangleIndex(s0, s1, s2 Square) uint64 {
	adjust1 := 0
	if s1 > s0 {
		adjust1 = 1
	}
	adjust2 := 0
	if s2 > s0 {
		adjust2++
	}
	if s2 > s1 {
		adjust2++
	}
	return uint64(tablenum.Triangle[s0])*63*62 +
		uint64(int(s1)-adjust1)*62 +
		uint64(int(s2)-adjust2)
}

// onDiagonalIndex handles squares[0] on the a1-h8 diagonal (one of
// a1/b2/c3/d4 once the horizontal and vertical folds have run). The
// reflection swapping file and rank fixes squares[0], so it is a symmetry
// of the remaining pair (s1, s2); tablenum.DiagPairIndex folds that pair
// into its canonical representative and ranks it within
// [0, SizeThreeUniqueOnDiag). The result is offset by
// SizeThreeUniqueOffDiag plus the on-diagonal class's position among the
// 4 on-diagonal classes, so it never collides with the off-diagonal range.
func onDiagonalIndex(s0, s1, s2 Square) (uint64, error) {
	class := tablenum.Triangle[s0]
	pairIdx := tablenum.DiagPairIndex[class-6][s1][s2]
	if pairIdx < 0 {
		return 0, fmt.Errorf("%w: illegal on-diagonal triple in DiagPairIndex", ErrCorruptedTable)
	}
	return uint64(tablenum.SizeThreeUniqueOffDiag) +
		uint64(class-6)*uint64(tablenum.SizeThreeUniqueOnDiag) +
		uint64(pairIdx), nil
}

// leadingIndexTwo encodes a 2-piece leading group. When the group is the
// two kings, it uses tablenum.MapKK, which folds the second king across
// the diagonal whenever the leading king sits on it (SPEC_FULL.md §9);
// otherwise (min_like_man == 2, two identical non-king pieces leading) it
// falls back to the same combinatorial ranking the "remaining groups" step
// uses for any other cohort.
func leadingIndexTwo(squares []Square, plist []pieces.Piece) (uint64, error) {
	s0, s1 := squares[0], squares[1]

	if len(plist) >= 2 && plist[0].Role == pieces.King && plist[1].Role == pieces.King {
		class := tablenum.Triangle[s0]
		idx := tablenum.MapKK[class][s1]
		if idx < 0 {
			return 0, fmt.Errorf("%w: illegal king pair in mapkk", ErrCorruptedTable)
		}
		return uint64(idx), nil
	}

	lo, hi := s0, s1
	if lo > hi {
		lo, hi = hi, lo
	}
	return tablenum.Binomial(int(lo), 1) + tablenum.Binomial(int(hi), 2), nil
}

// decompressAt locates and decodes the single stored byte at idx
// (SPEC_FULL.md §4.5's sparse-index -> block -> Huffman pipeline).
func decompressAt(pd *pairs.Data, idx uint64) (byte, error) {
	k := idx / uint64(pd.Span)
	entry, err := pd.SparseEntryAt(k)
	if err != nil {
		return 0, err
	}

	block := int64(entry.Block)
	offset := entry.Offset + int64(idx%uint64(pd.Span)) - pd.Span/2

	for offset < 0 {
		block--
		bl, err := pd.BlockLength(block)
		if err != nil {
			return 0, err
		}
		offset += bl + 1
	}
	for {
		bl, err := pd.BlockLength(block)
		if err != nil {
			return 0, err
		}
		if offset <= bl {
			break
		}
		offset -= bl + 1
		block++
	}

	data, err := pd.BlockData(block)
	if err != nil {
		return 0, err
	}
	reg, err := bitstream.New(data)
	if err != nil {
		return 0, err
	}

	var sym int
	for {
		var length int
		sym, length = pd.Symbol(reg.Peek())
		if offset < int64(pd.SymLen[sym])+1 {
			break
		}
		offset -= int64(pd.SymLen[sym]) + 1
		if err := reg.Consume(length + pd.MinSymLen); err != nil {
			return 0, err
		}
	}

	_, value, err := pd.DescendTree(sym, offset)
	if err != nil {
		return 0, err
	}
	return value, nil
}
