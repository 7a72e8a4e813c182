// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package pairs parses the per-(file, side) pairs-data decompression
// header: block size, sparse-index span, Huffman base array, and the
// symbol expansion tree (SPEC_FULL.md §4.4). It also exposes the raw
// symbol-tree reads probe.go needs during decode (SPEC_FULL.md §4.5
// steps 5-6), since the tree lives in the shared immutable byte range
// rather than being copied out.
package pairs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrCorrupt flags any invariant violation while constructing a Data: bad
// offset, non-monotone base, or an unreachable symbol expansion.
var ErrCorrupt = errors.New("pairs: corrupted table")

// Flag bits of Data.Flags.
const (
	FlagSTM = 1 << iota
	FlagMapped
	FlagWinPlies
	FlagLossPlies
	FlagSingleValue
)

// Data is one (file, side)'s decompression parameters, plus enough of the
// shared byte range to keep reading the symbol tree and data blocks at
// decode time.
type Data struct {
	bytes []byte // the full table byte range (shared, read-only)

	Flags         byte
	BlockSize     int64 // bytes per compressed block, power of two
	Span          int64 // values per sparse-index entry, power of two
	BlocksNum     uint32
	MinSymLen     int
	MaxSymLen     int
	Base          []uint64 // height h = Max-Min+1, left-shifted
	LowestSym     []uint16 // height h
	SymLen        []int    // per symbol, one less than byte-expansion count
	SymCount      int
	BtreeOffset   int64

	SparseIndexOffset  int64
	BlockLengthsOffset int64
	DataOffset         int64
}

// Parse reads a pairs-data header starting at off within data (the whole
// table's byte range), builds the base array and symbol lengths, and
// returns the offset immediately after the (possibly padded) symbol tree.
// Sparse-index/block-length/data offsets are filled in afterward by
// FinishLayout, once the caller knows this side's total table size.
func Parse(data []byte, off int64) (*Data, int64, error) {
	need := func(n int64) error {
		if off+n > int64(len(data)) {
			return fmt.Errorf("%w: header truncated", ErrCorrupt)
		}
		return nil
	}

	if err := need(10); err != nil {
		return nil, 0, err
	}
	d := &Data{bytes: data}
	d.Flags = data[off]
	blockSizeLog2 := data[off+1]
	spanLog2 := data[off+2]
	// data[off+3] is padding.
	d.BlocksNum = binary.LittleEndian.Uint32(data[off+4:])
	d.MaxSymLen = int(data[off+8])
	d.MinSymLen = int(data[off+9])
	off += 10

	d.BlockSize = int64(1) << blockSizeLog2
	d.Span = int64(1) << spanLog2

	if d.MaxSymLen < d.MinSymLen {
		return nil, 0, fmt.Errorf("%w: max_symlen < min_symlen", ErrCorrupt)
	}
	h := d.MaxSymLen - d.MinSymLen + 1

	if err := need(int64(2 * h)); err != nil {
		return nil, 0, err
	}
	d.LowestSym = make([]uint16, h)
	for i := 0; i < h; i++ {
		d.LowestSym[i] = binary.LittleEndian.Uint16(data[off+int64(2*i):])
	}
	off += int64(2 * h)

	if err := need(2); err != nil {
		return nil, 0, err
	}
	d.SymCount = int(binary.LittleEndian.Uint16(data[off:]))
	off += 2

	d.BtreeOffset = off
	btreeBytes := int64(3 * d.SymCount)
	if err := need(btreeBytes); err != nil {
		return nil, 0, err
	}
	off += btreeBytes
	if d.SymCount%2 != 0 {
		off++ // pad byte
	}

	if err := d.buildBase(h); err != nil {
		return nil, 0, err
	}
	if err := d.buildSymLen(); err != nil {
		return nil, 0, err
	}

	return d, off, nil
}

func (d *Data) buildBase(h int) error {
	raw := make([]uint64, h)
	raw[h-1] = 0
	for i := h - 2; i >= 0; i-- {
		lo, hi := uint64(d.LowestSym[i]), uint64(d.LowestSym[i+1])
		raw[i] = (raw[i+1] + lo - hi) / 2
		if 2*raw[i] < raw[i+1] {
			return fmt.Errorf("%w: non-monotone base at %d", ErrCorrupt, i)
		}
	}
	d.Base = make([]uint64, h)
	for i := 0; i < h; i++ {
		shift := uint(64 - (d.MinSymLen + i))
		d.Base[i] = raw[i] << shift
	}
	for i := 0; i < h-1; i++ {
		if d.Base[i] < d.Base[i+1] {
			return fmt.Errorf("%w: non-monotone base after shift at %d", ErrCorrupt, i)
		}
	}
	return nil
}

// triple reads the 3-byte btree node for symbol s: (left, right, lowByte).
// right == 0xFFF marks a terminal symbol whose expansion is the single
// byte lowByte.
func (d *Data) triple(s int) (left, right int, lowByte byte, err error) {
	o := d.BtreeOffset + 3*int64(s)
	if o+3 > int64(len(d.bytes)) {
		return 0, 0, 0, fmt.Errorf("%w: btree node out of range", ErrCorrupt)
	}
	b0, b1, b2 := d.bytes[o], d.bytes[o+1], d.bytes[o+2]
	left = (int(b1&0x0F) << 8) | int(b0)
	right = (int(b1>>4) << 8) | int(b2)
	return left, right, b0, nil
}

const btreeTerminal = 0xFFF

func (d *Data) buildSymLen() error {
	d.SymLen = make([]int, d.SymCount)
	const (
		unvisited = 0
		inBuild   = 1
		done      = 2
	)
	state := make([]byte, d.SymCount)

	var resolve func(s int) error
	resolve = func(s int) error {
		if s < 0 || s >= d.SymCount {
			return fmt.Errorf("%w: symbol index %d out of range", ErrCorrupt, s)
		}
		switch state[s] {
		case done:
			return nil
		case inBuild:
			return fmt.Errorf("%w: cyclic symbol expansion at %d", ErrCorrupt, s)
		}
		state[s] = inBuild
		left, right, _, err := d.triple(s)
		if err != nil {
			return err
		}
		if right == btreeTerminal {
			d.SymLen[s] = 0
		} else {
			if err := resolve(left); err != nil {
				return err
			}
			if err := resolve(right); err != nil {
				return err
			}
			d.SymLen[s] = d.SymLen[left] + d.SymLen[right] + 1
		}
		state[s] = done
		return nil
	}

	for s := 0; s < d.SymCount; s++ {
		if err := resolve(s); err != nil {
			return err
		}
	}
	return nil
}

// FinishLayout fills in the sparse-index, block-length, and data offsets
// once the caller knows this side's total table size (the product of all
// group factors), and returns the offset immediately after this side's
// data region -- i.e. where the next (file, side)'s header begins.
func (d *Data) FinishLayout(off int64, tableSize uint64) (int64, error) {
	sparseCount := (tableSize + uint64(d.Span) - 1) / uint64(d.Span)
	d.SparseIndexOffset = off
	off += int64(sparseCount) * 6

	d.BlockLengthsOffset = off
	blockLengthSize := int64(d.BlocksNum)
	if blockLengthSize%2 != 0 {
		blockLengthSize++ // padding to keep the data start word-aligned
	}
	off += blockLengthSize * 2

	off = alignUp64(off)
	d.DataOffset = off
	off += int64(d.BlocksNum) * d.BlockSize

	if off > int64(len(d.bytes)) {
		return 0, fmt.Errorf("%w: data region runs past end of table", ErrCorrupt)
	}
	return off, nil
}

func alignUp64(off int64) int64 {
	const align = 64
	if rem := off % align; rem != 0 {
		off += align - rem
	}
	return off
}

// SparseEntry is one (block, offset) sample, taken every Span values.
type SparseEntry struct {
	Block  uint32
	Offset int64 // signed: arithmetic in probe.go can carry it negative transiently
}

// SparseEntryAt reads the k-th sparse index entry (6 bytes: u32 block, u16
// offset).
func (d *Data) SparseEntryAt(k uint64) (SparseEntry, error) {
	o := d.SparseIndexOffset + int64(k)*6
	if o+6 > int64(len(d.bytes)) {
		return SparseEntry{}, fmt.Errorf("%w: sparse index out of range", ErrCorrupt)
	}
	block := binary.LittleEndian.Uint32(d.bytes[o:])
	offset := binary.LittleEndian.Uint16(d.bytes[o+4:])
	return SparseEntry{Block: block, Offset: int64(offset)}, nil
}

// BlockLength returns the number of values minus one stored in block,
// i.e. block_lengths[block].
func (d *Data) BlockLength(block int64) (int64, error) {
	if block < 0 || uint32(block) >= d.BlocksNum {
		return 0, fmt.Errorf("%w: block index %d out of range", ErrCorrupt, block)
	}
	o := d.BlockLengthsOffset + block*2
	if o+2 > int64(len(d.bytes)) {
		return 0, fmt.Errorf("%w: block length out of range", ErrCorrupt)
	}
	return int64(binary.LittleEndian.Uint16(d.bytes[o:])), nil
}

// BlockData returns the raw compressed bytes of block.
func (d *Data) BlockData(block int64) ([]byte, error) {
	if block < 0 || uint32(block) >= d.BlocksNum {
		return nil, fmt.Errorf("%w: block index %d out of range", ErrCorrupt, block)
	}
	o := d.DataOffset + block*d.BlockSize
	if o+d.BlockSize > int64(len(d.bytes)) {
		return nil, fmt.Errorf("%w: data block out of range", ErrCorrupt)
	}
	return d.bytes[o : o+d.BlockSize], nil
}

// Symbol looks up the smallest height index len such that the register's
// current 64-bit value is >= Base[len], and the symbol it decodes to.
// Mirrors SPEC_FULL.md §4.5 step 4's canonical-Huffman comparison.
func (d *Data) Symbol(reg uint64) (sym int, length int) {
	length = 0
	for length < len(d.Base)-1 && reg < d.Base[length] {
		length++
	}
	shift := uint(64 - (length + d.MinSymLen))
	sym = int((reg-d.Base[length])>>shift) + int(d.LowestSym[length])
	return sym, length
}

// DescendTree walks the symbol expansion tree from sym using offset as the
// position within its expansion, returning the terminal symbol and the
// byte it expands to.
func (d *Data) DescendTree(sym int, offset int64) (terminal int, value byte, err error) {
	for d.SymLen[sym] != 0 {
		left, right, _, terr := d.triple(sym)
		if terr != nil {
			return 0, 0, terr
		}
		if offset < int64(d.SymLen[left])+1 {
			sym = left
		} else {
			offset -= int64(d.SymLen[left]) + 1
			sym = right
		}
	}
	_, _, lowByte, terr := d.triple(sym)
	if terr != nil {
		return 0, 0, terr
	}
	return sym, lowByte, nil
}
