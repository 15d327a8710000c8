package book

import (
	"testing"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

func TestBookAddAndProbe(t *testing.T) {
	pos := board.NewPosition()
	b := New()
	b.add(pos.Hash, board.NewMove(board.E2, board.E4))

	if b.Size() != 1 {
		t.Errorf("expected book size 1, got %d", b.Size())
	}

	move, found := b.Probe(pos)
	if !found {
		t.Fatal("expected to find move in book")
	}
	if move.From() != board.E2 || move.To() != board.E4 {
		t.Errorf("expected e2e4, got %s", move.String())
	}
}

func TestBookMiss(t *testing.T) {
	b := New()
	pos := board.NewPosition()

	move, found := b.Probe(pos)
	if found {
		t.Error("expected book miss on empty book")
	}
	if move != board.NoMove {
		t.Errorf("expected NoMove on miss, got %s", move.String())
	}
}

func TestBookSetSemanticsNoDuplicates(t *testing.T) {
	pos := board.NewPosition()
	b := New()
	b.add(pos.Hash, board.NewMove(board.E2, board.E4))
	b.add(pos.Hash, board.NewMove(board.E2, board.E4))

	if len(b.entries[pos.Hash]) != 1 {
		t.Errorf("expected duplicate add to be a no-op, got %d entries", len(b.entries[pos.Hash]))
	}
}

func TestCompileTextUCI(t *testing.T) {
	b, err := CompileText("e2e4 e7e5 g1f3")
	if err != nil {
		t.Fatalf("CompileText: %v", err)
	}
	if b.Size() != 3 {
		t.Errorf("expected 3 distinct positions recorded, got %d", b.Size())
	}

	pos := board.NewPosition()
	move, found := b.Probe(pos)
	if !found || move.From() != board.E2 || move.To() != board.E4 {
		t.Errorf("expected e2e4 at starting position, got %v found=%v", move, found)
	}
}

func TestCompileTextSANWithAnnotations(t *testing.T) {
	b, err := CompileText("1. e4! e5?! 2. Nf3 Nc6 3. Bb5 a6 1-0")
	if err != nil {
		t.Fatalf("CompileText: %v", err)
	}

	pos := board.NewPosition()
	move, found := b.Probe(pos)
	if !found || move.String() != "e2e4" {
		t.Errorf("expected e2e4 at starting position, got %v found=%v", move, found)
	}
}

func TestCompileTextCastling(t *testing.T) {
	b, err := CompileText("1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. O-O Nf6")
	if err != nil {
		t.Fatalf("CompileText: %v", err)
	}
	if b.Size() == 0 {
		t.Fatal("expected at least one book entry")
	}
}

func TestProbeReverifiesLegality(t *testing.T) {
	pos := board.NewPosition()
	b := New()
	// A bogus move for the starting position should never be returned.
	b.add(pos.Hash, board.NewMove(board.A1, board.A8))

	if _, found := b.Probe(pos); found {
		t.Error("expected illegal book entry to be filtered out")
	}
}
