// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package groups

import (
	"testing"

	"github.com/tbprobe/syzygy/internal/pieces"
	"github.com/tbprobe/syzygy/internal/tablenum"
)

func TestComputeBareKings(t *testing.T) {
	plist := []pieces.Piece{
		{Color: pieces.White, Role: pieces.King},
		{Color: pieces.Black, Role: pieces.King},
	}
	p := Params{UniquePieces: 2, MinLikeMan: 0, ConnectedKings: false}

	d, err := Compute(plist, p)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(d.Lens) != 1 || d.Lens[0] != 2 {
		t.Fatalf("Lens = %v, want [2]", d.Lens)
	}
	if d.Factors[0] != 1 {
		t.Errorf("Factors[0] = %d, want 1", d.Factors[0])
	}
	if d.Factors[1] != tablenum.SizeTwoKingsNormal {
		t.Errorf("table size = %d, want %d", d.Factors[1], tablenum.SizeTwoKingsNormal)
	}
}

func TestComputeThreeUniquePlusPair(t *testing.T) {
	// KRRvKR: two identical rooks on the stronger side, one unique rook on
	// the weaker side, plus the two (unique) kings -> unique_pieces = 3
	// (both kings + the lone black rook), leading group length 3.
	plist := []pieces.Piece{
		{Color: pieces.White, Role: pieces.King},
		{Color: pieces.Black, Role: pieces.King},
		{Color: pieces.Black, Role: pieces.Rook},
		{Color: pieces.White, Role: pieces.Rook},
		{Color: pieces.White, Role: pieces.Rook},
	}
	p := Params{UniquePieces: 3, MinLikeMan: 2, ConnectedKings: false}

	d, err := Compute(plist, p)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(d.Lens) != 2 {
		t.Fatalf("Lens = %v, want 2 groups", d.Lens)
	}
	if d.Lens[0] != 3 {
		t.Errorf("leading group length = %d, want 3", d.Lens[0])
	}
	if d.Lens[1] != 2 {
		t.Errorf("remaining group length = %d, want 2 (the two like rooks)", d.Lens[1])
	}
	if d.Factors[0] != 1 {
		t.Errorf("Factors[0] = %d, want 1", d.Factors[0])
	}
	wantLeadSize := uint64(tablenum.SizeThreeUnique)
	if d.Factors[1] != wantLeadSize {
		t.Errorf("Factors[1] = %d, want %d", d.Factors[1], wantLeadSize)
	}
}

func TestComputeRejectsEmptyList(t *testing.T) {
	if _, err := Compute(nil, Params{}); err == nil {
		t.Error("expected an error for an empty piece list")
	}
}
