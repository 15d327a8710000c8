package engine

import (
	"github.com/nobriot/schnecken-bot-sub001/internal/board"
	"github.com/nobriot/schnecken-bot-sub001/internal/cache"
)

// TTFlag indicates the type of bound an evaluation-cache entry stores,
// needed by alpha-beta to know whether a cached score can be reused as an
// exact value or only as a bound.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// PositionStatus mirrors board.Position's terminal-status classification,
// cached alongside the evaluation so a transposition hit also short
// circuits a repeated checkmate/stalemate/draw test.
type PositionStatus uint8

const (
	StatusOngoing PositionStatus = iota
	StatusCheckmate
	StatusStalemate
	StatusDraw
)

// EvalEntry is the engine's evaluation-at-depth cache entry: one slot per
// Zobrist hash, storing the bound type, the cached evaluation, the depth
// it was searched to, and the best move found (for move ordering on a
// repeat visit). It satisfies cache.Entry via Key().
type EvalEntry struct {
	hash     uint64
	BestMove board.Move
	Eval     board.Eval
	Depth    int8
	Flag     TTFlag
	Status   PositionStatus
	Age      uint8
}

// Key implements cache.Entry.
func (e EvalEntry) Key() uint64 { return e.hash }

// TranspositionTable is the engine's evaluation-at-depth cache: a thin,
// search-aware wrapper around the generic cache.Table that adds an aging
// scheme for replacement decisions.
type TranspositionTable struct {
	table *cache.Table[EvalEntry]
	age   uint8
}

// NewTranspositionTable creates a transposition table sized in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	return &TranspositionTable{table: cache.NewTable[EvalEntry](sizeMB, EvalEntry{})}
}

// Probe looks up a position. The second return reports whether the stored
// entry's hash matched (a true cache hit, never a false positive).
func (tt *TranspositionTable) Probe(hash uint64) (EvalEntry, bool) {
	e, ok := tt.table.Get(hash)
	if !ok || e.Depth <= 0 {
		return EvalEntry{}, false
	}
	return e, true
}

// Store saves a position's search result, replacing the existing slot
// unless it belongs to the current search generation and is already at
// least as deep (a shallower re-search of the same position should not
// clobber a deeper, more trustworthy result from earlier this search).
func (tt *TranspositionTable) Store(hash uint64, depth int, eval board.Eval, flag TTFlag, status PositionStatus, best board.Move) {
	existing, _ := tt.table.Get(hash)
	if existing.Age == tt.age && depth < int(existing.Depth) {
		return
	}
	tt.table.Put(hash, EvalEntry{
		hash:     hash,
		BestMove: best,
		Eval:     eval,
		Depth:    int8(depth),
		Flag:     flag,
		Status:   status,
		Age:      tt.age,
	})
}

// NewSearch advances the replacement generation for a fresh search.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	tt.table.Clear()
	tt.age = 0
}

// Resize reallocates the table to sizeMB, discarding contents.
func (tt *TranspositionTable) Resize(sizeMB int) {
	tt.table.Resize(sizeMB)
	tt.age = 0
}

// HitRate returns the cumulative probe hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes, hits := tt.table.Stats()
	if probes == 0 {
		return 0
	}
	return float64(hits) / float64(probes) * 100
}

// Size returns the number of slots in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(tt.table.Len())
}

// AdjustScoreFromTT and AdjustScoreToTT shift plain-int mate scores between
// root-relative and node-relative form; nothing in this package calls
// them. Mate distances must be measured from the root, not from the node
// that stored them, hence the ply shift in both directions.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
