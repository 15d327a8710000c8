package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nobriot/schnecken-bot-sub001/internal/botlog"
)

// StreamAccountEvents opens the account-wide event stream and invokes
// handler for every decoded event. It blocks until ctx is canceled or the
// connection drops; the caller is expected to reconnect.
func (c *Client) StreamAccountEvents(ctx context.Context, handler func(AccountEvent)) error {
	return c.streamNDJSON(ctx, "stream/event", func(line []byte) {
		var event AccountEvent
		if err := json.Unmarshal(line, &event); err != nil {
			botlog.For("lichess").Warn().Err(err).Msg("malformed account event")
			return
		}
		handler(event)
	})
}

// GameEvent is one decoded line of a per-game stream, tagged by its
// "type" field so the caller can type-switch without re-parsing.
type GameEvent struct {
	Type string
	Raw  json.RawMessage
}

// StreamGame opens the per-game event stream for gameID and invokes
// handler for every event (gameFull, gameState, chatLine, opponentGone).
func (c *Client) StreamGame(ctx context.Context, gameID string, handler func(GameEvent)) error {
	endpoint := fmt.Sprintf("bot/game/stream/%s", gameID)
	return c.streamNDJSON(ctx, endpoint, func(line []byte) {
		var tagged struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &tagged); err != nil {
			botlog.For("lichess").Warn().Err(err).Str("game", gameID).Msg("malformed game event")
			return
		}
		handler(GameEvent{Type: tagged.Type, Raw: json.RawMessage(line)})
	})
}

// streamNDJSON issues a GET against endpoint and feeds every non-empty
// line to onLine. A single-byte (or empty) line is a keep-alive and is
// silently ignored, per the server's documented ping behavior.
func (c *Client) streamNDJSON(ctx context.Context, endpoint string, onLine func(line []byte)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("lichess: stream %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("lichess: stream %s returned status %d", endpoint, resp.StatusCode)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			botlog.For("lichess").Debug().Str("endpoint", endpoint).Msg("keep-alive received")
		} else {
			onLine([]byte(trimmed))
		}

		if err != nil {
			return err
		}
	}
}
