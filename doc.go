// Copyright (c) tbprobe contributors
// Licensed under the MIT license

/*
Package syzygy probes Syzygy endgame tablebases: precomputed, read-only
binary databases that give the game-theoretic value of a chess position
with few pieces left on the board.

A [Table] is built once from an immutable byte range (typically a
memory-mapped .rtbw file) and is thereafter read-only. [Probe] answers a
single WDL query against a [Table] by computing a canonical index from the
position's material and squares, then decompressing one byte from the
table through a sparse index and a canonical Huffman code.

This package implements only the core decoder. Chess move generation,
FEN parsing, file discovery, and session-wide caching of opened tables
live outside the core; see the sibling internal/manager package for a
reference caller that does the latter.
*/
package syzygy
