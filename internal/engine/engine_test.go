package engine

import (
	"testing"
	"time"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

func TestSearchBasic(t *testing.T) {
	eng := New(false)
	eng.SetOptions(Options{MaxDepth: 4, MaxTimeMs: 2000, MultiPV: 1})

	result := eng.Go()
	if result.Empty() {
		t.Fatal("Go returned an empty analysis for the starting position")
	}

	move := eng.GetBestMove()
	if move == board.NoMove {
		t.Error("GetBestMove returned NoMove for the starting position")
	}
	t.Logf("best move: %s", move.String())
}

func TestMultiPV(t *testing.T) {
	eng := New(false)
	eng.SetOptions(Options{MaxDepth: 4, MaxTimeMs: 3000, MultiPV: 3})

	result := eng.Go()
	if len(result.Lines) < 2 {
		t.Fatalf("expected at least 2 PVs, got %d", len(result.Lines))
	}

	if result.Lines[0].Line.Get(0) == result.Lines[1].Line.Get(0) {
		t.Errorf("first two PVs have the same move: %s", result.Lines[0].Line.Get(0).String())
	}

	// White to move: lines must be sorted descending by Eval.
	for i := 1; i < len(result.Lines); i++ {
		if result.Lines[i].Eval.Score() > result.Lines[i-1].Eval.Score() {
			t.Errorf("PV %d ranks above PV %d despite a lower score", i, i-1)
		}
	}

	for i, line := range result.Lines {
		t.Logf("PV %d: %s (%s)", i+1, line.Line.String(), line.Eval.String())
	}
}

func TestGoRespectsTimeBudget(t *testing.T) {
	eng := New(false)
	eng.SetOptions(Options{MaxDepth: MaxPly, MaxTimeMs: 200, MultiPV: 1})

	start := time.Now()
	result := eng.Go()
	elapsed := time.Since(start)

	if result.Empty() {
		t.Fatal("expected at least a depth-1 result within the time budget")
	}
	if elapsed > 2*time.Second {
		t.Errorf("search ran far past its time budget: %s", elapsed)
	}
}

func TestStopInterruptsSearch(t *testing.T) {
	eng := New(false)
	eng.SetOptions(Options{MaxDepth: MaxPly, MaxTimeMs: 0, MultiPV: 1})

	done := make(chan SearchResult, 1)
	eng.GoCancellable()
	go func() {
		for eng.IsActive() {
			time.Sleep(10 * time.Millisecond)
		}
		done <- eng.GetAnalysis()
	}()

	time.Sleep(100 * time.Millisecond)
	eng.Stop()

	select {
	case result := <-done:
		if result.Empty() {
			t.Error("expected a non-empty result after Stop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop in time")
	}
}

func TestApplyMoveAndReset(t *testing.T) {
	eng := New(false)
	if err := eng.ApplyMove("e2e4"); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if err := eng.ApplyMove("e7e4"); err == nil {
		t.Error("expected illegal move to be rejected")
	}

	eng.Reset()
	if err := eng.ApplyMove("e2e4"); err != nil {
		t.Fatalf("ApplyMove after Reset: %v", err)
	}
}

func TestSetPositionRoundTrip(t *testing.T) {
	eng := New(false)
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"
	if err := eng.SetPosition(fen); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	eng.SetOptions(Options{MaxDepth: 3, MaxTimeMs: 1000, MultiPV: 1})
	result := eng.Go()
	if result.Empty() {
		t.Error("expected a result for a legal mid-game position")
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1)
	pos := board.NewPosition()

	if _, _, found := pt.Probe(pos.PawnKey); found {
		t.Error("expected cache miss on first probe")
	}

	pt.Store(pos.PawnKey, -15, -20)

	mg, eg, found := pt.Probe(pos.PawnKey)
	if !found {
		t.Error("expected cache hit after store")
	}
	if mg != -15 || eg != -20 {
		t.Errorf("wrong values: got mg=%d, eg=%d, want -15, -20", mg, eg)
	}

	oldKey := pos.PawnKey
	move := board.NewMove(board.E2, board.E4)
	undo := pos.MakeMove(move)
	if pos.PawnKey == oldKey {
		t.Error("PawnKey should change when a pawn moves")
	}

	pos.UnmakeMove(move, undo)
	if pos.PawnKey != oldKey {
		t.Error("PawnKey should be restored on unmake")
	}
}
