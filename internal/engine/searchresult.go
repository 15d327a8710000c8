package engine

import "github.com/nobriot/schnecken-bot-sub001/internal/board"

// SearchResult is the ordered multi-PV accumulator a Go() call fills in:
// at most K lines, sorted so the best one for the side to move is first.
// Evals are always carried from White's perspective (board.Eval's own
// convention); only the sort direction depends on who is to move.
type SearchResult struct {
	Lines []board.VariationWithEval
	k     int
}

// NewSearchResult creates an accumulator capped at k lines (k<=0 means 1).
func NewSearchResult(k int) SearchResult {
	if k <= 0 {
		k = 1
	}
	return SearchResult{k: k}
}

// Update inserts v in sorted order and trims to K. white selects the sort
// direction: White wants the highest Eval first, Black the lowest.
func (r *SearchResult) Update(v board.VariationWithEval, white bool) {
	better := func(a, b board.Eval) bool {
		if white {
			return b.Less(a)
		}
		return a.Less(b)
	}

	idx := len(r.Lines)
	for i, existing := range r.Lines {
		if better(v.Eval, existing.Eval) {
			idx = i
			break
		}
	}
	r.Lines = append(r.Lines, board.VariationWithEval{})
	copy(r.Lines[idx+1:], r.Lines[idx:])
	r.Lines[idx] = v

	if len(r.Lines) > r.k {
		r.Lines = r.Lines[:r.k]
	}
}

// Best returns the top line, or the zero value if the result is empty.
func (r *SearchResult) Best() (board.VariationWithEval, bool) {
	if len(r.Lines) == 0 {
		return board.VariationWithEval{}, false
	}
	return r.Lines[0], true
}

// Empty reports whether no line was ever found — the "empty analysis"
// anomaly the per-game worker must treat as an engine error.
func (r *SearchResult) Empty() bool {
	return len(r.Lines) == 0
}
