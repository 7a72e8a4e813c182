// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package syzygy

import (
	"errors"
	"testing"
)

// stubBoard is a minimal, hand-populated Board for exercising Probe without
// a real chess engine (no .rtbw fixtures are available in this environment,
// so every table here is built byte-by-byte to match a known WDL value).
type stubBoard struct {
	pieces   map[Square]Piece
	turn     Color
	castling CastlingRights
}

func newStubBoard(turn Color) *stubBoard {
	return &stubBoard{pieces: make(map[Square]Piece), turn: turn}
}

func (b *stubBoard) put(sq Square, c Color, r Role) *stubBoard {
	b.pieces[sq] = Piece{Color: c, Role: r}
	return b
}

func (b *stubBoard) Turn() Color                     { return b.turn }
func (b *stubBoard) CastlingRights() CastlingRights  { return b.castling }
func (b *stubBoard) PieceCount() int                 { return len(b.pieces) }
func (b *stubBoard) PieceAt(sq Square) (Piece, bool) { p, ok := b.pieces[sq]; return p, ok }

func (b *stubBoard) SquaresOf(color Color, role Role) []Square {
	var out []Square
	for sq, p := range b.pieces {
		if p.Color == color && p.Role == role {
			out = append(out, sq)
		}
	}
	return out
}

// sq builds a Square from algebraic file/rank, e.g. sq(4, 0) == e1.
func sq(file, rank int) Square { return Square(rank*8 + file) }

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }

// buildKvKDrawTable constructs a minimal, valid WDL table for bare kings
// (KvK) whose entire symbol alphabet is a single terminal symbol expanding
// to the Draw byte. Every legal index therefore decodes to Draw, which
// lets the test assert the canonicalization and indexing pipeline runs
// end-to-end without needing a hand-verified index value: a two-king
// position is always a draw, by the rules of chess, regardless of where
// the kings stand (SPEC_FULL.md §8).
func buildKvKDrawTable() []byte {
	data := make([]byte, 1088)

	copy(data[0:4], Standard.WDLMagic[:])
	data[4] = 0 // layout: pawnless, not split
	data[5] = 0 // order: leading group placed first

	// Piece list: byte0 high nibble = white king, byte1 high nibble =
	// black king; low nibbles unused (only one side is stored, since the
	// material is symmetric).
	data[6] = 0x66
	data[7] = 0xEE
	// data[8] (terminator) and data[9] (padding) left zero.

	off := 10
	data[off+0] = 0  // flags
	data[off+1] = 10 // block size = 2^10 = 1024
	data[off+2] = 9  // span = 2^9 = 512
	data[off+3] = 0  // padding
	copy(data[off+4:off+8], le32(1)[:]) // blocks_num = 1
	data[off+8] = 8                     // max_symlen
	data[off+9] = 8                     // min_symlen
	off += 10

	copy(data[off:off+2], le16(0)[:]) // lowest_sym[0] = 0
	off += 2

	copy(data[off:off+2], le16(1)[:]) // sym_count = 1
	off += 2

	data[off+0] = byte(Draw + 2) // terminal leaf's expansion byte
	data[off+1] = 0xFF
	data[off+2] = 0xFF // right == 0xFFF marks symbol 0 terminal
	off += 3
	off++ // pad byte (sym_count is odd)

	// off == 28 here: sparse index starts right after the header.
	copy(data[off+0:off+4], le32(0)[:])  // sparse entry 0: block 0
	copy(data[off+4:off+6], le16(256)[:]) // sample offset = span/2

	blOff := off + 6
	copy(data[blOff:blOff+2], le16(461)[:]) // block_lengths[0] = values-1

	// Data block (offset 64..1088) is left all-zero: the register the
	// decoder peeks always reads back to symbol 0 regardless of how many
	// bits have been consumed, since there is only one symbol.

	return data
}

func openKvKDrawTable(t *testing.T, key MaterialKey) *Table {
	t.Helper()
	tab, err := Open(Standard, key, buildKvKDrawTable())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tab
}

func TestProbeBareKingsIsAlwaysDraw(t *testing.T) {
	cases := []struct {
		name string
		wk   Square
		bk   Square
		turn Color
	}{
		{"white to move, kings apart", sq(4, 0), sq(4, 7), White},
		{"black to move, kings apart", sq(4, 0), sq(4, 7), Black},
		{"white to move, kings on the long diagonal", sq(0, 0), sq(7, 7), White},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := newStubBoard(c.turn).put(c.wk, White, King).put(c.bk, Black, King)
			key, _ := MaterialFromBoard(b).Normalize()
			table := openKvKDrawTable(t, key)

			wdl, err := Probe(table, b)
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if wdl != Draw {
				t.Errorf("got %v, want Draw", wdl)
			}
		})
	}
}

func TestProbeRejectsCastlingRights(t *testing.T) {
	b := newStubBoard(White).put(sq(4, 0), White, King).put(sq(4, 7), Black, King)
	key, _ := MaterialFromBoard(b).Normalize()
	table := openKvKDrawTable(t, key)
	// Castling rights are set only after building the table key, since
	// Probe should reject the position before ever looking at the table.
	b.castling = CastleWhiteKingside

	if _, err := Probe(table, b); err != ErrCastling {
		t.Errorf("got %v, want ErrCastling", err)
	}
}

func TestProbeRejectsTooManyPieces(t *testing.T) {
	b := newStubBoard(White)
	squares := []Square{
		sq(4, 0), sq(4, 7), sq(0, 0), sq(1, 0), sq(2, 0), sq(3, 0), sq(5, 0),
	}
	roles := []Role{King, King, Pawn, Pawn, Pawn, Pawn, Pawn}
	colors := []Color{White, Black, White, White, White, White, White}
	for i, s := range squares {
		b.put(s, colors[i], roles[i])
	}
	// The hand-built table bytes are a pawnless KvK layout, so the table is
	// opened for KvK: Probe should reject the piece count before it ever
	// compares material against the table.
	kvk := newStubBoard(White).put(sq(4, 0), White, King).put(sq(4, 7), Black, King)
	key, _ := MaterialFromBoard(kvk).Normalize()
	table := openKvKDrawTable(t, key)

	if _, err := Probe(table, b); err != ErrTooManyPieces {
		t.Errorf("got %v, want ErrTooManyPieces", err)
	}
}

func TestProbeMissingTable(t *testing.T) {
	kvk := newStubBoard(White).put(sq(4, 0), White, King).put(sq(4, 7), Black, King)
	kvkKey, _ := MaterialFromBoard(kvk).Normalize()
	table := openKvKDrawTable(t, kvkKey)

	other := newStubBoard(White).
		put(sq(4, 0), White, King).
		put(sq(4, 7), Black, King).
		put(sq(0, 0), White, Queen)

	_, err := Probe(table, other)
	var missing *MissingTableError
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.As(err, &missing) {
		t.Errorf("got %v, want a *MissingTableError", err)
	}
}
