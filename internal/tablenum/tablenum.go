// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package tablenum holds the literal and precomputed constant tables that
// the Syzygy index formula is built on: the a1-d1-d4 triangle map, the
// binomial (choose) table, the fixed leading-group symmetry-class sizes,
// and the two-king / lead-pawns tables the generator publishes rather than
// derives on the fly (see SPEC_FULL.md §4.3/§9).
package tablenum

// Triangle maps a square (rank*8+file) to its index in the a1-d1-d4
// triangle (10 entries, 0..9), exploiting the eightfold symmetry of a
// pawnless board. Reflected squares share the value of their a1-d1-d4
// representative.
var Triangle = [64]int{
	6, 0, 1, 2, 2, 1, 0, 6,
	0, 7, 3, 4, 4, 3, 7, 0,
	1, 3, 8, 5, 5, 8, 3, 1,
	2, 4, 5, 9, 9, 5, 4, 2,
	2, 4, 5, 9, 9, 5, 4, 2,
	1, 3, 8, 5, 5, 8, 3, 1,
	0, 7, 3, 4, 4, 3, 7, 0,
	6, 0, 1, 2, 2, 1, 0, 6,
}

// Symmetry-class sizes for the leading group of a pawnless table, literal
// constants of the Syzygy format (SPEC_FULL.md §9).
const (
	SizeThreeUnique      = 31332 // unique_pieces >= 3
	SizeTwoKingsConnected = 518  // unique_pieces == 2, CONNECTED_KINGS
	SizeTwoKingsNormal    = 462  // unique_pieces == 2, !CONNECTED_KINGS
	SizeMinLikeTwo        = 278  // min_like_man == 2
)

// SizeThreeUniqueOffDiag and SizeThreeUniqueOnDiag split SizeThreeUnique
// into its two leading-square regimes: 6 off-diagonal triangle classes at
// 63*62 each, plus 4 on-diagonal classes (a1, b2, c3, d4) at
// SizeThreeUniqueOnDiag each, after folding the other two squares across
// the diagonal that fixes an on-diagonal leading square.
//
//	SizeThreeUniqueOffDiag + 4*SizeThreeUniqueOnDiag == SizeThreeUnique
const (
	SizeThreeUniqueOffDiag = 6 * 63 * 62
	SizeThreeUniqueOnDiag  = 1974
)

const maxBinomialN = 64
const maxBinomialK = 8

// binomial[n][k] = C(n, k), precomputed by Pascal's triangle. It is filled
// by a variable initializer, which runs before every init function of the
// package, so init code in other files (leadpawns.go) can call Binomial.
var binomial = func() (t [maxBinomialN + 1][maxBinomialK + 1]uint64) {
	for n := 0; n <= maxBinomialN; n++ {
		t[n][0] = 1
		for k := 1; k <= maxBinomialK && k <= n; k++ {
			t[n][k] = t[n-1][k-1] + t[n-1][k]
		}
	}
	return t
}()

// Binomial returns C(n, k), i.e. the number of ways to choose k items from
// n. Arguments outside the precomputed range give 0, except k == 0, which
// always gives 1.
func Binomial(n, k int) uint64 {
	if k < 0 || n < 0 || k > maxBinomialK || n > maxBinomialN || k > n {
		if k == 0 {
			return 1
		}
		return 0
	}
	return binomial[n][k]
}

// kkInvalid marks a MapKK or DiagPairIndex entry for a square combination
// that cannot occur.
const kkInvalid = -1

// MapKK[triangleClass][sq1] gives the flat two-king leading-group index for
// a leading king on the triangleClass representative square and a second
// king on sq1, or kkInvalid if the pair cannot occur (same square, or an
// illegally adjacent pair when kings may not be connected).
//
// The real Syzygy generator publishes this table; SPEC_FULL.md §9 notes it
// is not re-derivable from the spec text alone. This package reconstructs
// it by the same method the generator is documented to use: a single
// monotonically increasing counter walked across the 10 triangle classes
// and 64 second-king squares in square-index order, skipping invalid
// pairs and, for the on-diagonal classes, giving a square and its diagonal
// mirror one shared index (see BuildMapKK), so that the final counter value
// is the class's total (Connected or Normal).
var MapKK [10][64]int

// TriangleRepresentative[c] is the canonical square in the a1-d1-d4
// triangle whose Triangle value is c.
var TriangleRepresentative [10]int

func init() {
	for sq := 0; sq < 64; sq++ {
		file, rank := sq&7, sq>>3
		if file <= rank && rank < 4 {
			TriangleRepresentative[Triangle[sq]] = sq
		}
	}
}

func kingsAdjacent(a, b int) bool {
	fa, ra := a&7, a>>3
	fb, rb := b&7, b>>3
	df, dr := fa-fb, ra-rb
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	return df <= 1 && dr <= 1
}

// mirrorDiagSquare swaps file and rank, matching Square.MirrorDiagonal in
// the root package (kept as a plain int here to avoid an import cycle).
func mirrorDiagSquare(s int) int {
	file, rank := s&7, s>>3
	return file*8 + rank
}

// BuildMapKK (re)builds MapKK for the given CONNECTED_KINGS setting and
// returns the total leading-group size it produced, so callers can assert
// it against SizeTwoKingsConnected/SizeTwoKingsNormal.
//
// When the leading king's triangle representative square is itself on the
// a1-h8 diagonal (classes 6-9: a1/b2/c3/d4), the reflection that swaps file
// and rank fixes that square, so it is a symmetry of the whole two-king
// placement: s1 and mirrorDiagSquare(s1) name the same canonical position
// and must share one index. Off-diagonal classes have no such fixed
// reflection and are enumerated without folding, as before.
func BuildMapKK(connectedKings bool) int {
	idx := 0
	for class := 0; class < 10; class++ {
		s0 := TriangleRepresentative[class]
		onDiag := s0&7 == s0>>3
		for s1 := 0; s1 < 64; s1++ {
			switch {
			case s1 == s0:
				MapKK[class][s1] = kkInvalid
			case !connectedKings && kingsAdjacent(s0, s1):
				MapKK[class][s1] = kkInvalid
			case onDiag:
				if m1 := mirrorDiagSquare(s1); m1 < s1 {
					// s1's canonical partner was already assigned.
					MapKK[class][s1] = MapKK[class][m1]
				} else {
					MapKK[class][s1] = idx
					idx++
				}
			default:
				MapKK[class][s1] = idx
				idx++
			}
		}
	}
	return idx
}

func init() {
	BuildMapKK(false)
}

// buildDiagPairIndex fills DiagPairIndex for each of the 4 on-diagonal
// triangle classes (6-9). For a fixed on-diagonal leading square s0, the
// reflection swapping file and rank fixes s0 and is therefore a symmetry of
// the remaining two squares (s1, s2) taken together: it maps the ordered
// pair (s1, s2) to (mirrorDiagSquare(s1), mirrorDiagSquare(s2)), and both
// name the same canonical 3-unique position. The lexicographically smaller
// of the pair and its mirror is kept as the canonical representative and
// assigned the next index; its mirror (and itself, if the pair is its own
// mirror) is given the same index.
func buildDiagPairIndex() {
	for c := 0; c < 4; c++ {
		s0 := TriangleRepresentative[c+6]
		idx := 0
		for s1 := 0; s1 < 64; s1++ {
			for s2 := 0; s2 < 64; s2++ {
				if s1 == s0 || s2 == s0 || s1 == s2 {
					DiagPairIndex[c][s1][s2] = kkInvalid
					continue
				}
				m1, m2 := mirrorDiagSquare(s1), mirrorDiagSquare(s2)
				if m1 < s1 || (m1 == s1 && m2 < s2) {
					DiagPairIndex[c][s1][s2] = DiagPairIndex[c][m1][m2]
					continue
				}
				DiagPairIndex[c][s1][s2] = idx
				idx++
			}
		}
		if idx != SizeThreeUniqueOnDiag {
			panic("tablenum: on-diagonal pair enumeration does not match SizeThreeUniqueOnDiag")
		}
	}
}

// DiagPairIndex[c][s1][s2] is the canonical index in [0, SizeThreeUniqueOnDiag)
// for the pair (s1, s2) when the 3-unique leading square is
// TriangleRepresentative[c+6] (one of a1, b2, c3, d4), or kkInvalid if s1 or
// s2 coincides with the leading square or with each other.
var DiagPairIndex [4][64][64]int

func init() {
	buildDiagPairIndex()
}
