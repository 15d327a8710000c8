package book

import (
	"os"
	"testing"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

func TestStoreSaveAndLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "schnecken-book-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	pos := board.NewPosition()
	b := New()
	b.add(pos.Hash, board.NewMove(board.E2, board.E4))
	b.add(pos.Hash, board.NewMove(board.D2, board.D4))

	store, err := OpenStore(tmpDir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if loaded.Size() != 1 {
		t.Errorf("expected 1 position recorded, got %d", loaded.Size())
	}

	all := loaded.ProbeAll(pos)
	if len(all) != 2 {
		t.Errorf("expected 2 moves recorded for starting position, got %d", len(all))
	}
}
