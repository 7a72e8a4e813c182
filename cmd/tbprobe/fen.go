// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package main

import (
	"fmt"
	"strings"

	"github.com/tbprobe/syzygy"
)

// fenBoard is a minimal, read-only syzygy.Board built by parsing a FEN
// piece-placement and side-to-move field. It implements nothing else a
// real chess engine would (move generation, check detection): the core
// only ever needs the consumed Board interface (SPEC_FULL.md §6).
type fenBoard struct {
	squares  [64]syzygy.Piece
	occupied [64]bool
	turn     syzygy.Color
}

var fenPieceRole = map[byte]syzygy.Role{
	'p': syzygy.Pawn, 'n': syzygy.Knight, 'b': syzygy.Bishop,
	'r': syzygy.Rook, 'q': syzygy.Queen, 'k': syzygy.King,
}

// parseFEN reads the first two fields of a FEN string (piece placement and
// side to move); the remaining fields (castling, en passant, clocks) are
// ignored by the probe contract beyond castling rights, which callers are
// expected to have already confirmed are empty.
func parseFEN(fen string) (*fenBoard, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("fen: need at least placement and side-to-move fields")
	}

	b := &fenBoard{}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("fen: expected 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			default:
				role, ok := fenPieceRole[byte(lower(byte(ch)))]
				if !ok {
					return nil, fmt.Errorf("fen: unrecognized piece char %q", ch)
				}
				if file >= 8 {
					return nil, fmt.Errorf("fen: rank %d overflows 8 files", rank+1)
				}
				color := syzygy.Black
				if ch >= 'A' && ch <= 'Z' {
					color = syzygy.White
				}
				sq := syzygy.Square(rank*8 + file)
				b.squares[sq] = syzygy.Piece{Color: color, Role: role}
				b.occupied[sq] = true
				file++
			}
		}
	}

	switch fields[1] {
	case "w":
		b.turn = syzygy.White
	case "b":
		b.turn = syzygy.Black
	default:
		return nil, fmt.Errorf("fen: side to move must be 'w' or 'b', got %q", fields[1])
	}

	return b, nil
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func (b *fenBoard) Turn() syzygy.Color { return b.turn }

// CastlingRights always reports none: FEN's castling-availability field
// describes rights, not a position feature that changes table indexing,
// and tbprobe only ever probes positions its own FEN parser is told are
// already castling-free.
func (b *fenBoard) CastlingRights() syzygy.CastlingRights { return 0 }

func (b *fenBoard) PieceCount() int {
	n := 0
	for _, occ := range b.occupied {
		if occ {
			n++
		}
	}
	return n
}

func (b *fenBoard) PieceAt(sq syzygy.Square) (syzygy.Piece, bool) {
	if sq < 0 || int(sq) >= 64 || !b.occupied[sq] {
		return syzygy.Piece{}, false
	}
	return b.squares[sq], true
}

func (b *fenBoard) SquaresOf(color syzygy.Color, role syzygy.Role) []syzygy.Square {
	var out []syzygy.Square
	for sq := syzygy.Square(0); int(sq) < 64; sq++ {
		if b.occupied[sq] && b.squares[sq].Color == color && b.squares[sq].Role == role {
			out = append(out, sq)
		}
	}
	return out
}
