package lichess

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := baseURL
	baseURL = srv.URL + "/"
	t.Cleanup(func() { baseURL = old })

	return NewClient("test-token")
}

func TestGetUsername(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"schnecken_bot"}`)
	})

	username, err := client.GetUsername()
	if err != nil {
		t.Fatalf("GetUsername: %v", err)
	}
	if username != "schnecken_bot" {
		t.Errorf("got %q, want schnecken_bot", username)
	}
}

func TestIsOnline(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"someplayer","online":true}]`)
	})

	if !client.IsOnline("someplayer") {
		t.Error("expected IsOnline to return true")
	}
}

func TestMakeMoveRetriesUntilAccepted(t *testing.T) {
	attempts := 0
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	})

	if err := client.MakeMove("abc123", "e2e4", false); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestMakeMoveGivesUpAfterTenAttempts(t *testing.T) {
	attempts := 0
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	if err := client.MakeMove("abc123", "e2e4", false); err == nil {
		t.Error("expected an error after exhausting retries")
	}
	if attempts != 10 {
		t.Errorf("expected 10 attempts, got %d", attempts)
	}
}

func TestWriteInChatRoomEncodesText(t *testing.T) {
	var gotBody string
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)
		fmt.Fprint(w, `{}`)
	})

	client.WriteInChatRoom("abc123", RoomSpectator, "hello there!")

	if !strings.Contains(gotBody, "room=spectator") {
		t.Errorf("expected room=spectator in body, got %q", gotBody)
	}
	if !strings.Contains(gotBody, "text=hello") {
		t.Errorf("expected url-encoded text in body, got %q", gotBody)
	}
}

func TestChallengeUserFailsWhenServerRejects(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if err := client.ChallengeUser("someplayer", true); err == nil {
		t.Error("expected an error from a rejected challenge")
	}
}
