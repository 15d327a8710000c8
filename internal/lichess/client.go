package lichess

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/nobriot/schnecken-bot-sub001/internal/botlog"
)

// baseURL is a var (not a const) so tests can redirect it at an
// httptest.Server instead of reaching the real lichess API.
var baseURL = "https://lichess.org/api/"

// Client talks to the lichess Board/Bot API over plain HTTP. It carries no
// game-specific state; one Client is shared by the orchestrator and every
// per-game worker.
type Client struct {
	token        string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient builds a Client authenticated with a personal API token.
// Streaming requests use a client with no fixed timeout since a stream
// may legitimately stay open for hours; cancellation is via context.
func NewClient(token string) *Client {
	return &Client{
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
}

func (c *Client) newRequest(method, endpoint, body string) (*http.Request, error) {
	req, err := http.NewRequest(method, baseURL+endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) get(endpoint string) (json.RawMessage, error) {
	req, err := c.newRequest(http.MethodGet, endpoint, "")
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(endpoint, body string) (json.RawMessage, error) {
	req, err := c.newRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lichess: request %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lichess: read response for %s: %w", req.URL, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lichess: %s returned status %d: %s", req.URL, resp.StatusCode, string(payload))
	}
	return json.RawMessage(payload), nil
}

// GetUsername returns the bot's own lichess account ID.
func (c *Client) GetUsername() (string, error) {
	raw, err := c.get("account")
	if err != nil {
		return "", err
	}
	var profile struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return "", fmt.Errorf("lichess: decode account profile: %w", err)
	}
	return profile.ID, nil
}

// IsOnline checks whether a given user is currently online.
func (c *Client) IsOnline(userID string) bool {
	raw, err := c.get("users/status?ids=" + url.QueryEscape(userID))
	if err != nil {
		botlog.For("lichess").Warn().Err(err).Str("user", userID).Msg("is_online lookup failed")
		return false
	}
	var statuses []struct {
		Online bool `json:"online"`
	}
	if err := json.Unmarshal(raw, &statuses); err != nil || len(statuses) == 0 {
		return false
	}
	return statuses[0].Online
}

// ChallengeUser sends a correspondence-free challenge to userID. rated
// controls whether the game counts towards rating.
func (c *Client) ChallengeUser(userID string, rated bool) error {
	endpoint := fmt.Sprintf("challenge/%s", userID)
	body := fmt.Sprintf("rated=%t", rated)
	_, err := c.post(endpoint, body)
	if err != nil {
		return fmt.Errorf("lichess: challenge %s: %w", userID, err)
	}
	return nil
}

// AbortGame aborts a not-yet-started game.
func (c *Client) AbortGame(gameID string) error {
	_, err := c.post(fmt.Sprintf("bot/game/%s/abort", gameID), "")
	return err
}

// ResignGame resigns an ongoing game.
func (c *Client) ResignGame(gameID string) error {
	_, err := c.post(fmt.Sprintf("bot/game/%s/resign", gameID), "")
	return err
}

// Room names which chat room a message is sent to.
type Room string

const (
	RoomPlayer    Room = "player"
	RoomSpectator Room = "spectator"
)

// WriteInChatRoom posts a chat message to the given room. Failures are
// logged but not returned: a missed chat line should never abort a game.
func (c *Client) WriteInChatRoom(gameID string, room Room, message string) {
	endpoint := fmt.Sprintf("bot/game/%s/chat", gameID)
	body := fmt.Sprintf("room=%s&text=%s", room, url.QueryEscape(message))

	if _, err := c.post(endpoint, body); err != nil {
		botlog.For("lichess").Warn().Err(err).Str("game", gameID).Msg("failed to send chat message")
	}
}

// WriteInChat is a convenience wrapper for the player room.
func (c *Client) WriteInChat(gameID, message string) {
	c.WriteInChatRoom(gameID, RoomPlayer, message)
}

// WriteInSpectatorRoom is a convenience wrapper for the spectator room.
func (c *Client) WriteInSpectatorRoom(gameID, message string) {
	c.WriteInChatRoom(gameID, RoomSpectator, message)
}

type moveResponse struct {
	OK bool `json:"ok"`
}

// MakeMove submits a move in UCI notation, retrying up to 10 times on
// transient failures before giving up.
func (c *Client) MakeMove(gameID, move string, offerDraw bool) error {
	endpoint := fmt.Sprintf("bot/game/%s/move/%s?offeringDraw=%t", gameID, move, offerDraw)

	var resp moveResponse
	err := retry.Do(
		func() error {
			raw, err := c.post(endpoint, "")
			if err != nil {
				return err
			}
			if jsonErr := json.Unmarshal(raw, &resp); jsonErr != nil {
				return fmt.Errorf("lichess: decode move response: %w", jsonErr)
			}
			if !resp.OK {
				return fmt.Errorf("lichess: server rejected move %s", move)
			}
			return nil
		},
		retry.Attempts(10),
		retry.Delay(200*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			botlog.For("lichess").Warn().Uint("attempt", n+1).Err(err).
				Str("game", gameID).Str("move", move).Msg("move submission retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("lichess: make move %s on game %s: %w", move, gameID, err)
	}
	return nil
}

// ClaimVictory claims victory on a game whose opponent has left.
func (c *Client) ClaimVictory(gameID string) error {
	_, err := c.post(fmt.Sprintf("board/game/%s/claim-victory", gameID), "")
	return err
}

// ClaimVictoryAfterTimeout sleeps for timeout+1 seconds, then claims
// victory. The sleep cannot be cancelled.
func (c *Client) ClaimVictoryAfterTimeout(timeout time.Duration, gameID string) {
	time.Sleep(timeout + time.Second)
	if err := c.ClaimVictory(gameID); err != nil {
		botlog.For("lichess").Warn().Err(err).Str("game", gameID).Msg("claim-victory failed")
	}
}
