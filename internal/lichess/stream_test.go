package lichess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStreamGameIgnoresKeepAlives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write([]byte("\n"))
		flusher.Flush()
		w.Write([]byte(`{"type":"gameState","moves":"e2e4","status":"started"}` + "\n"))
		flusher.Flush()
	}))
	defer srv.Close()

	old := baseURL
	baseURL = srv.URL + "/"
	defer func() { baseURL = old }()

	client := NewClient("test-token")

	var events []GameEvent
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = client.StreamGame(ctx, "abc123", func(ev GameEvent) {
		events = append(events, ev)
	})

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 real event (keep-alive ignored), got %d", len(events))
	}
	if events[0].Type != "gameState" {
		t.Errorf("expected gameState, got %s", events[0].Type)
	}
}

func TestStreamAccountEventsDecodesGameStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"gameStart","game":{"gameId":"xyz","color":"white"}}` + "\n"))
	}))
	defer srv.Close()

	old := baseURL
	baseURL = srv.URL + "/"
	defer func() { baseURL = old }()

	client := NewClient("test-token")

	var got AccountEvent
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = client.StreamAccountEvents(ctx, func(ev AccountEvent) {
		got = ev
	})

	if got.Type != "gameStart" {
		t.Fatalf("expected gameStart, got %q", got.Type)
	}
	if got.Game == nil || got.Game.GameID != "xyz" {
		t.Fatalf("expected parsed game with ID xyz, got %+v", got.Game)
	}
}
