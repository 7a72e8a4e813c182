// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package groups computes, from a side's ordered piece list, the grouping
// of pieces into independently-encoded cohorts and the per-cohort
// multiplicative factors that turn a tuple of squares into a single table
// index (SPEC_FULL.md §4.3).
package groups

import (
	"fmt"

	"github.com/tbprobe/syzygy/internal/pieces"
	"github.com/tbprobe/syzygy/internal/tablenum"
)

// Descriptor is one (file, side)'s group layout: see spec.md §3 "Group
// descriptor".
type Descriptor struct {
	Pieces  []pieces.Piece
	Lens    []int
	Factors []uint64 // len(Lens)+1; Factors[len(Lens)] is the table size.
}

// Params carries the material-derived facts groups.Compute needs but
// cannot derive from the piece list alone, since those facts are
// properties of the whole (both-sides) material key, not one side's list.
type Params struct {
	HasPawns       bool
	UniquePieces   int // MaterialKey.UniquePieces()
	MinLikeMan     int // MaterialKey.MinLikeMan()
	ConnectedKings bool
	// Order is the raw 1-byte order field for this (side, file).
	Order byte
	// BlackSide selects the black-table side entry, which swaps the
	// leading/pawn order nibbles per SPEC_FULL.md §4.3.
	BlackSide bool
}

// Compute builds the group descriptor for plist (one side's full ordered
// piece list) under params.
func Compute(plist []pieces.Piece, p Params) (*Descriptor, error) {
	if len(plist) == 0 {
		return nil, fmt.Errorf("groups: empty piece list")
	}

	firstLen := firstGroupLen(plist, p)
	lens := []int{firstLen}
	for i := firstLen; i < len(plist); {
		j := i + 1
		for j < len(plist) && samePiece(plist[j], plist[i]) {
			j++
		}
		lens = append(lens, j-i)
		i = j
	}

	factors, err := computeFactors(lens, p)
	if err != nil {
		return nil, err
	}

	return &Descriptor{Pieces: plist, Lens: lens, Factors: factors}, nil
}

func samePiece(a, b pieces.Piece) bool { return a.Color == b.Color && a.Role == b.Role }

func firstGroupLen(plist []pieces.Piece, p Params) int {
	if p.HasPawns {
		n := 0
		for _, pc := range plist {
			if pc.Role == pieces.Pawn {
				n++
			}
		}
		if n == 0 {
			n = 1 // defensive: a pawnful key always has >=1 pawn
		}
		return n
	}
	if p.UniquePieces >= 3 {
		return 3
	}
	return 2
}

func leadingGroupSize(lens []int, p Params) uint64 {
	if p.HasPawns {
		// At header-parse time no square is known yet, so the lead pawn's
		// file class is not resolved; file 0 is used as a placeholder for
		// every file entry. probe.go does not recompute this factor: Probe
		// handles only the pawnless path (SPEC_FULL.md §9).
		const placeholderFile = 0
		return tablenum.LeadPawnsSize[lens[0]][placeholderFile]
	}
	switch {
	case p.UniquePieces >= 3:
		return tablenum.SizeThreeUnique
	case p.UniquePieces == 2:
		if p.ConnectedKings {
			return tablenum.SizeTwoKingsConnected
		}
		return tablenum.SizeTwoKingsNormal
	default:
		return tablenum.SizeMinLikeTwo
	}
}

func computeFactors(lens []int, p Params) ([]uint64, error) {
	total := len(lens)
	factors := make([]uint64, total+1)

	leadOrder := int(p.Order >> 4)
	pawnOrder := int(p.Order & 0x0F)
	if p.BlackSide {
		leadOrder, pawnOrder = pawnOrder, leadOrder
	}

	startOther := 1
	if p.HasPawns {
		startOther = 2
		if total < 2 {
			return nil, fmt.Errorf("groups: pawnful material needs a pawn group")
		}
	}

	leadingPlaced := false
	pawnPlaced := !p.HasPawns
	nextOther := startOther

	freeSquares := 64 - lens[0]
	if p.HasPawns {
		freeSquares = 48 - lens[0]
	}

	currentIdx := uint64(1)
	for k := 0; !leadingPlaced || !pawnPlaced || nextOther < total; k++ {
		switch {
		case !leadingPlaced && k == leadOrder:
			factors[0] = currentIdx
			currentIdx *= leadingGroupSize(lens, p)
			leadingPlaced = true
		case p.HasPawns && !pawnPlaced && k == pawnOrder:
			factors[1] = currentIdx
			currentIdx *= tablenum.Binomial(48-lens[0], lens[1])
			freeSquares = 64 - lens[0] - lens[1]
			pawnPlaced = true
		case nextOther < total:
			factors[nextOther] = currentIdx
			currentIdx *= tablenum.Binomial(freeSquares, lens[nextOther])
			freeSquares -= lens[nextOther]
			nextOther++
		}
		if k > 64 {
			return nil, fmt.Errorf("groups: order field never places all groups")
		}
	}
	factors[total] = currentIdx
	return factors, nil
}
