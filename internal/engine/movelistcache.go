package engine

import (
	"github.com/nobriot/schnecken-bot-sub001/internal/board"
	"github.com/nobriot/schnecken-bot-sub001/internal/cache"
)

// MoveListEntry is the second of the engine's two named caches: a
// position's already-generated legal move list, keyed by Zobrist hash, so
// a repeated visit (transposition, or a re-probe during multi-PV search)
// skips regeneration.
type MoveListEntry struct {
	hash  uint64
	Moves *board.MoveList
}

// Key implements cache.Entry.
func (e MoveListEntry) Key() uint64 { return e.hash }

// MoveListCache wraps the generic cache.Table for move-list entries.
type MoveListCache struct {
	table *cache.Table[MoveListEntry]
}

// NewMoveListCache creates a move-list cache sized in MB.
func NewMoveListCache(sizeMB int) *MoveListCache {
	return &MoveListCache{table: cache.NewTable[MoveListEntry](sizeMB, MoveListEntry{})}
}

// Get returns the cached move list for hash, regenerating via gen on a
// miss and populating the cache with the result.
func (c *MoveListCache) Get(hash uint64, gen func() *board.MoveList) *board.MoveList {
	if e, ok := c.table.Get(hash); ok {
		return e.Moves
	}
	moves := gen()
	c.table.Put(hash, MoveListEntry{hash: hash, Moves: moves})
	return moves
}

// Clear empties the cache.
func (c *MoveListCache) Clear() {
	c.table.Clear()
}

// Resize reallocates the cache to sizeMB, discarding contents.
func (c *MoveListCache) Resize(sizeMB int) {
	c.table.Resize(sizeMB)
}
