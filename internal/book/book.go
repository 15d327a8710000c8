// Package book implements the opening book: a set-valued mapping from a
// position's Zobrist hash to the legal moves known to be playable from
// it. A book is compiled once, offline, from a PGN or UCI move-list text
// source into a badger-backed on-disk store; at runtime it is opened
// read-only and loaded into an immutable in-memory map.
package book

import (
	"math/rand"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

// Book is an immutable, process-wide mapping from position hash to the
// set of moves recorded for it.
type Book struct {
	entries map[uint64][]board.Move
}

// New creates an empty book, normally only used by the compiler below.
func New() *Book {
	return &Book{entries: make(map[uint64][]board.Move)}
}

// add records move as playable from the position hashing to key. Set
// semantics: a move already present is not duplicated.
func (b *Book) add(key uint64, move board.Move) {
	for _, m := range b.entries[key] {
		if m == move {
			return
		}
	}
	b.entries[key] = append(b.entries[key], move)
}

// Probe returns a uniformly random move from the set recorded for pos, or
// (NoMove, false) if the position is not in the book. The move is
// re-verified legal in pos before being returned, since a book compiled
// against one move-order can occasionally carry a stale entry.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	moves, ok := b.entries[pos.Hash]
	if !ok || len(moves) == 0 {
		return board.NoMove, false
	}

	legal := pos.GenerateLegalMoves()
	candidates := make([]board.Move, 0, len(moves))
	for _, m := range moves {
		for i := 0; i < legal.Len(); i++ {
			if legal.Get(i) == m {
				candidates = append(candidates, m)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return board.NoMove, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// ProbeAll returns every known book move for pos, without legality
// re-verification, for inspection/debugging use.
func (b *Book) ProbeAll(pos *board.Position) []board.Move {
	if b == nil {
		return nil
	}
	return b.entries[pos.Hash]
}

// Size returns the number of distinct positions recorded in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
