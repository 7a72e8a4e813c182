// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package syzygy

// WDL is a win/draw/loss value refined by the 50-move rule: a loss that is
// saved by the 50-move counter (BlessedLoss) or a win nullified by it
// (CursedWin) are distinct from a plain Loss/Win.
type WDL int8

const (
	Loss WDL = iota - 2
	BlessedLoss
	Draw
	CursedWin
	Win
)

func (w WDL) String() string {
	switch w {
	case Loss:
		return "Loss"
	case BlessedLoss:
		return "BlessedLoss"
	case Draw:
		return "Draw"
	case CursedWin:
		return "CursedWin"
	case Win:
		return "Win"
	default:
		return "Invalid"
	}
}

// Negate flips the value to the other side's perspective: Loss<->Win,
// BlessedLoss<->CursedWin, Draw is its own negation.
func (w WDL) Negate() WDL { return -w }

// wdlFromByte maps a decompressed table byte to a WDL value.
// 0->Loss, 1->BlessedLoss, 2->Draw, 3->CursedWin, 4->Win. Any other byte
// is a corrupted table.
func wdlFromByte(b byte) (WDL, error) {
	if b > 4 {
		return 0, ErrCorruptedTable
	}
	return WDL(int8(b) - 2), nil
}
