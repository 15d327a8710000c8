package bot

import (
	"testing"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
)

func TestSearchBudgetMsUnderTenSeconds(t *testing.T) {
	if got := searchBudgetMs(5000, 0); got != 100 {
		t.Errorf("expected 100ms when time is low, got %d", got)
	}
}

func TestSearchBudgetMsFormula(t *testing.T) {
	got := searchBudgetMs(90_000, 1000)
	want := int(90_000/90 + 1000*10/9)
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestSearchBudgetMsClampsIncrement(t *testing.T) {
	withCap := searchBudgetMs(90_000, 1_000_000)
	withMax := searchBudgetMs(90_000, maxIncrementMs)
	if withCap != withMax {
		t.Errorf("increment should clamp at %d ms: got %d, want %d", maxIncrementMs, withCap, withMax)
	}
}

func TestTieBreakCutoffEmptyAnalysis(t *testing.T) {
	if got := tieBreakCutoff(engine.SearchResult{}); got != 0 {
		t.Errorf("expected 0 for empty analysis, got %d", got)
	}
}

func TestTieBreakCutoffIncludesCloseLines(t *testing.T) {
	analysis := engine.NewSearchResult(3)
	var v1, v2, v3 board.Variation
	v1.Append(board.NewMove(board.E2, board.E4))
	v2.Append(board.NewMove(board.D2, board.D4))
	v3.Append(board.NewMove(board.G1, board.F3))

	analysis.Update(board.VariationWithEval{Line: v1, Eval: board.NewScore(0.50)}, true)
	analysis.Update(board.VariationWithEval{Line: v2, Eval: board.NewScore(0.49)}, true)
	analysis.Update(board.VariationWithEval{Line: v3, Eval: board.NewScore(0.10)}, true)

	if got := tieBreakCutoff(analysis); got != 2 {
		t.Errorf("expected the first 2 close lines, got %d", got)
	}
}

func TestTieBreakCutoffDoesNotGroupMateWithPlainScore(t *testing.T) {
	analysis := engine.NewSearchResult(2)
	var v1, v2 board.Variation
	v1.Append(board.NewMove(board.D1, board.H5))
	v2.Append(board.NewMove(board.G1, board.F3))

	// A mate score's Score() reads 0, which would look "tied" against a
	// near-zero plain score under a naive numeric comparison even though
	// the mate line is overwhelmingly better.
	analysis.Update(board.VariationWithEval{Line: v1, Eval: board.NewMate(3)}, true)
	analysis.Update(board.VariationWithEval{Line: v2, Eval: board.NewScore(0.0)}, true)

	if got := tieBreakCutoff(analysis); got != 1 {
		t.Errorf("expected the mate line to stand alone, got cutoff %d", got)
	}
}

func TestTieBreakCutoffGroupsEqualMates(t *testing.T) {
	analysis := engine.NewSearchResult(2)
	var v1, v2 board.Variation
	v1.Append(board.NewMove(board.D1, board.H5))
	v2.Append(board.NewMove(board.F3, board.F7))

	analysis.Update(board.VariationWithEval{Line: v1, Eval: board.NewMate(2)}, true)
	analysis.Update(board.VariationWithEval{Line: v2, Eval: board.NewMate(2)}, true)

	if got := tieBreakCutoff(analysis); got != 2 {
		t.Errorf("expected both same-distance mates to tie, got cutoff %d", got)
	}
}
