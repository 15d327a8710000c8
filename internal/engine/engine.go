package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
	"github.com/nobriot/schnecken-bot-sub001/internal/book"
)

// Style selects the active opening book and evaluation weighting profile.
type Style int

const (
	StyleNormal Style = iota
	StyleConservative
	StyleAggressive
	StyleProvocative
)

// Options configures an Engine's behavior. MultiPV is clamped to [0,5];
// 0 and 1 are both treated as single-PV.
type Options struct {
	UCI        bool
	Ponder     bool
	MaxDepth   int
	MaxTimeMs  int
	MaxThreads int
	UseNNUE    bool
	Debug      bool
	Style      Style
	MultiPV    int
}

// DefaultOptions returns the engine's out-of-the-box configuration.
func DefaultOptions() Options {
	return Options{
		MaxDepth:  MaxPly,
		MaxTimeMs: 0,
		MultiPV:   1,
		Style:     StyleNormal,
	}
}

// Engine is the façade the UCI adapter and the bot's per-game worker both
// drive: it owns the position, the caches, the evaluator, and the single
// cancellable search flow.
type Engine struct {
	mu  sync.Mutex
	pos *board.Position

	tt            *TranspositionTable
	moveListCache *MoveListCache
	pawnTable     *PawnTable

	searcher *Searcher
	eval     Evaluator
	opts     Options

	stopFlag atomic.Bool
	active   atomic.Bool
	result   SearchResult

	normalBook      *book.Book
	provocativeBook *book.Book

	posHistory []uint64
}

// New creates an Engine. uciMode only affects Options.UCI, surfaced so a
// caller can tell whether info/bestmove-style reporting is expected.
func New(uciMode bool) *Engine {
	opts := DefaultOptions()
	opts.UCI = uciMode

	tt := NewTranspositionTable(64)
	e := &Engine{
		tt:            tt,
		moveListCache: NewMoveListCache(16),
		pawnTable:     NewPawnTable(4),
		opts:          opts,
	}
	e.eval = selectEvaluator(opts)
	e.searcher = NewSearcher(tt, e.moveListCache, &e.stopFlag, e.eval)

	pos, err := board.ParseFEN(board.StartFEN)
	if err == nil {
		e.pos = pos
	}
	return e
}

// SetOptions replaces the engine's configuration. Changing UseNNUE
// re-resolves the evaluator (currently a no-op, since no NNUE evaluator is
// wired); changing Style switches the active opening book and the
// evaluator's weighting profile.
func (e *Engine) SetOptions(opts Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts
	e.eval = selectEvaluator(opts)
	e.searcher = NewSearcher(e.tt, e.moveListCache, &e.stopFlag, e.eval)
}

// Options returns the engine's current configuration.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetBook installs the normal and provocative opening books. Either may be
// nil if that variant is unavailable.
func (e *Engine) SetBook(normal, provocative *book.Book) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.normalBook = normal
	e.provocativeBook = provocative
}

func (e *Engine) activeBook() *book.Book {
	if e.opts.Style == StyleProvocative && e.provocativeBook != nil {
		return e.provocativeBook
	}
	return e.normalBook
}

// SetPosition replaces the current position from a FEN string.
func (e *Engine) SetPosition(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("engine: set position: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = pos
	e.posHistory = e.posHistory[:0]
	return nil
}

// SetPositionHistory seeds repetition-detection history with hashes from
// the game played so far (most recent last).
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posHistory = append(e.posHistory[:0], hashes...)
}

// ApplyMove parses a UCI move string and applies it to the current
// position. The move must be legal in the current position.
func (e *Engine) ApplyMove(str string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos == nil {
		return fmt.Errorf("engine: apply move %q: no position set", str)
	}
	m, err := board.ParseMove(str, e.pos)
	if err != nil {
		return fmt.Errorf("engine: apply move %q: %w", str, err)
	}
	if !e.pos.IsLegal(m) {
		return fmt.Errorf("engine: apply move %q: illegal in current position", str)
	}
	e.pos.MakeMove(m)
	e.posHistory = append(e.posHistory, e.pos.Hash)
	return nil
}

// ResizeCacheTables resizes the evaluation cache, move-list cache, and
// pawn table to sizeMB (each), discarding their contents.
func (e *Engine) ResizeCacheTables(sizeMB int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Resize(sizeMB)
	e.moveListCache.Resize(sizeMB)
	e.pawnTable.Resize(sizeMB)
}

// Reset clears every cache and returns the position to the start of a new
// game.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	e.moveListCache.Clear()
	e.pawnTable.Clear()
	e.posHistory = e.posHistory[:0]
	pos, err := board.ParseFEN(board.StartFEN)
	if err == nil {
		e.pos = pos
	}
	e.result = SearchResult{}
}

// IsActive reports whether a search is currently running.
func (e *Engine) IsActive() bool {
	return e.active.Load()
}

// Stop requests the current search to return its best result so far.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// GetAnalysis returns the most recently completed search result. The
// result is stored only when Go returns, so while a search is running this
// still reports the previous one.
func (e *Engine) GetAnalysis() SearchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// GetBestMove returns the best move of the current analysis, or NoMove if
// nothing has been searched yet.
func (e *Engine) GetBestMove() board.Move {
	e.mu.Lock()
	res := e.result
	e.mu.Unlock()
	if best, ok := res.Best(); ok {
		return best.Line.Get(0)
	}
	return board.NoMove
}

// GoCancellable starts a search in the background and returns immediately.
// Poll IsActive/GetAnalysis, or call Stop to interrupt it.
func (e *Engine) GoCancellable() {
	if !e.active.CompareAndSwap(false, true) {
		return
	}
	go e.Go()
}

// Go runs a blocking iterative-deepening search from the current position
// honoring Options, and returns the final SearchResult. It is the single
// cancellable search flow: one call tree, stoppable at any node boundary
// via Stop().
func (e *Engine) Go() SearchResult {
	e.mu.Lock()
	pos := e.pos
	opts := e.opts
	bk := e.activeBook()
	e.mu.Unlock()

	e.active.Store(true)
	defer e.active.Store(false)
	e.stopFlag.Store(false)

	if pos == nil {
		return SearchResult{}
	}

	if bk != nil {
		if move, ok := bk.Probe(pos); ok {
			var v board.Variation
			v.Append(move)
			result := NewSearchResult(1)
			result.Update(board.VariationWithEval{Line: v, Eval: board.NewScore(0)}, pos.SideToMove == board.White)
			e.mu.Lock()
			e.result = result
			e.mu.Unlock()
			return result
		}
	}

	k := opts.MultiPV
	if k <= 0 {
		k = 1
	}
	if k > 5 {
		k = 5
	}

	maxDepth := MaxPly
	if opts.MaxDepth > 0 && opts.MaxDepth < maxDepth {
		maxDepth = opts.MaxDepth
	}

	var tm *TimeManager
	if opts.MaxTimeMs > 0 {
		tm = NewTimeManager()
		tm.Init(UCILimits{MoveTime: time.Duration(opts.MaxTimeMs) * time.Millisecond}, pos.SideToMove, len(e.posHistory))
		e.searcher.SetTimeManager(tm)
	}

	white := pos.SideToMove == board.White
	result := NewSearchResult(k)
	e.tt.NewSearch()

	excluded := make([]board.Move, 0, k)
	for line := 0; line < k; line++ {
		e.searcher.Reset()
		e.searcher.SetExcludedMoves(excluded)

		var bestMove board.Move
		var bestEval board.Eval
		var bestVar board.Variation
		found := false
		var prevBest board.Move
		stability, changes := 0, 0

		for depth := 1; depth <= maxDepth; depth++ {
			if tm != nil && tm.ShouldStop() {
				break
			}
			if e.stopFlag.Load() && found {
				break
			}

			move, eval := e.searcher.Search(pos, depth)
			if move == board.NoMove {
				break
			}

			if found && move == prevBest {
				stability++
			} else if found {
				changes++
				stability = 0
			}
			prevBest = move

			bestMove = move
			bestEval = eval
			bestVar = e.searcher.GetPV()
			found = true

			if tm != nil {
				if stability > 0 {
					tm.AdjustForStability(stability)
				} else if changes > 0 {
					tm.AdjustForInstability(changes)
				}
				if tm.PastOptimum() {
					break
				}
			}

			if e.stopFlag.Load() {
				break
			}
			if eval.IsMate() {
				break
			}
		}

		if !found {
			break
		}
		result.Update(board.VariationWithEval{Line: bestVar, Eval: bestEval}, white)
		excluded = append(excluded, bestMove)

		if tm != nil && tm.ShouldStop() {
			break
		}
	}

	e.mu.Lock()
	e.result = result
	e.mu.Unlock()
	return result
}

// Evaluate returns the static evaluation of a position using the engine's
// currently configured evaluator.
func (e *Engine) Evaluate(pos *board.Position) board.Eval {
	return e.eval.Evaluate(pos)
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}
	return nodes
}
