package bot

import (
	"testing"

	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
	"github.com/nobriot/schnecken-bot-sub001/internal/lichess"
)

func newTestBot() *Bot {
	return New(lichess.NewClient("test-token"), "schnecken_bot", engine.StyleNormal, 8, nil, nil, nil)
}

func TestNewBotStartsIdle(t *testing.T) {
	b := newTestBot()
	if b.State() != Idle {
		t.Errorf("expected Idle state, got %v", b.State())
	}
	if b.ActiveGames() != 0 {
		t.Errorf("expected 0 active games, got %d", b.ActiveGames())
	}
}

func TestCapacityRefusesBeyondLimit(t *testing.T) {
	b := newTestBot()

	for i := 0; i < maxConcurrentGames; i++ {
		b.games[string(rune('a'+i))] = &Worker{gameID: string(rune('a' + i))}
	}
	if b.ActiveGames() != maxConcurrentGames {
		t.Fatalf("expected %d games seeded, got %d", maxConcurrentGames, b.ActiveGames())
	}

	b.addGame(lichess.GameStart{GameID: "overflow"})
	if b.ActiveGames() != maxConcurrentGames {
		t.Errorf("expected capacity to stay at %d, got %d", maxConcurrentGames, b.ActiveGames())
	}
	if _, exists := b.games["overflow"]; exists {
		t.Error("overflow game should have been refused")
	}
}

func TestPurgeRemovesFinishedWorkers(t *testing.T) {
	b := newTestBot()

	done := make(chan struct{})
	close(done)
	b.games["finished"] = &Worker{gameID: "finished", doneCh: done}
	b.games["ongoing"] = &Worker{gameID: "ongoing"}

	b.purge()

	if _, exists := b.games["finished"]; exists {
		t.Error("finished game should have been purged")
	}
	if _, exists := b.games["ongoing"]; !exists {
		t.Error("ongoing game should not have been purged")
	}
}

func TestRemoveGame(t *testing.T) {
	b := newTestBot()
	b.games["abc"] = &Worker{gameID: "abc"}

	b.removeGame("abc")
	if _, exists := b.games["abc"]; exists {
		t.Error("expected game to be removed")
	}
}
