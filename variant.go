// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package syzygy

// Variant carries the per-chess-variant constants the core needs: magic
// numbers, file suffixes, and the three symmetry flags that change how
// material is grouped and indexed (see internal/groups).
type Variant struct {
	Name string

	WDLSuffix string
	DTZSuffix string

	WDLMagic [4]byte
	DTZMagic [4]byte
	// Pawnless variants of the same tables use a distinct magic number.
	WDLMagicPawnless [4]byte
	DTZMagicPawnless [4]byte

	OneKing          bool
	ConnectedKings   bool
	CapturesCompulsory bool
}

// Standard is the variant descriptor for orthodox chess.
var Standard = Variant{
	Name:      "chess",
	WDLSuffix: "rtbw",
	DTZSuffix: "rtbz",

	WDLMagic: [4]byte{0x71, 0xE8, 0x23, 0x5D},
	DTZMagic: [4]byte{0xD7, 0x66, 0x0C, 0xA5},

	OneKing:            true,
	ConnectedKings:     false,
	CapturesCompulsory: false,
}
