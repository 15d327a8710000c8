package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/nobriot/schnecken-bot-sub001/internal/book"
	"github.com/nobriot/schnecken-bot-sub001/internal/botlog"
	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
	"github.com/nobriot/schnecken-bot-sub001/internal/lichess"
)

// scoreTieBreakMargin is how close (in pawns) a line's score must be to
// the best line's score to be considered an equally good candidate.
const scoreTieBreakMargin = 0.015

// maxIncrementMs caps how much of the per-move increment counts toward
// the time budget, matching the original time-management formula.
const maxIncrementMs = 60_000

// Worker drives a single ongoing game: one mailbox, one engine instance,
// one blocking search goroutine at a time.
type Worker struct {
	gameID   string
	color    lichess.Color
	client   *lichess.Client
	eng      *engine.Engine
	username string

	mailbox chan Message
	rng     *rand.Rand

	cancel context.CancelFunc
	wg     sync.WaitGroup
	doneCh chan struct{}

	knownMoves int
	helpSent   bool
	waitSent   bool
}

// NewWorker allocates the resources for playing one lichess game: an
// engine instance, a buffered mailbox, and a seeded PRNG for move
// tie-breaking. It launches both the worker's mailbox loop and the
// per-game stream reader that feeds it as goroutines and returns without
// waiting for them.
func NewWorker(start lichess.GameStart, client *lichess.Client, style engine.Style, cacheMB int, username string, normalBook, provocativeBook *book.Book) *Worker {
	eng := engine.New(false)
	eng.ResizeCacheTables(cacheMB)
	eng.SetBook(normalBook, provocativeBook)
	opts := eng.Options()
	opts.Style = style
	eng.SetOptions(opts)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		gameID:   start.GameID,
		color:    start.Color,
		client:   client,
		eng:      eng,
		username: username,
		mailbox:  make(chan Message, 32),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cancel:   cancel,
		doneCh:   make(chan struct{}),
	}

	w.wg.Add(2)
	go w.streamLoop(ctx)
	go w.mailboxLoop()
	go func() {
		w.wg.Wait()
		close(w.doneCh)
	}()

	w.mailbox <- Message{Kind: MsgStart, Start: &start}
	return w
}

// Send enqueues a message for the worker. Never blocks the caller for
// long: the mailbox is generously buffered and messages are cheap.
func (w *Worker) Send(msg Message) {
	select {
	case w.mailbox <- msg:
	default:
		botlog.For("worker").Warn().Str("game", w.gameID).Msg("mailbox full, dropping message")
	}
}

// IsOver reports whether the worker's event loop has exited.
func (w *Worker) IsOver() bool {
	select {
	case <-w.doneCh:
		return true
	default:
		return false
	}
}

// streamLoop subscribes to the per-game event stream and turns every
// event into a mailbox message, per the ordering guarantee that stream
// events are applied in receive order.
func (w *Worker) streamLoop(ctx context.Context) {
	defer w.wg.Done()
	log := botlog.For("worker").With().Str("game", w.gameID).Logger()

	err := w.client.StreamGame(ctx, w.gameID, func(ev lichess.GameEvent) {
		switch ev.Type {
		case "gameFull":
			var full lichess.GameFull
			if jsonErr := json.Unmarshal(ev.Raw, &full); jsonErr != nil {
				log.Warn().Err(jsonErr).Msg("malformed gameFull")
				return
			}
			state := full.State
			w.Send(Message{Kind: MsgUpdate, State: &state})
		case "gameState":
			var state lichess.GameState
			if jsonErr := json.Unmarshal(ev.Raw, &state); jsonErr != nil {
				log.Warn().Err(jsonErr).Msg("malformed gameState")
				return
			}
			if state.Status.IsOngoing() {
				w.Send(Message{Kind: MsgUpdate, State: &state})
			} else {
				w.Send(Message{Kind: MsgEnd, State: &state})
			}
		case "chatLine":
			var chat lichess.ChatLine
			if jsonErr := json.Unmarshal(ev.Raw, &chat); jsonErr != nil {
				log.Warn().Err(jsonErr).Msg("malformed chatLine")
				return
			}
			w.Send(Message{Kind: MsgChat, Chat: &chat})
		case "opponentGone":
			var gone lichess.OpponentGone
			if jsonErr := json.Unmarshal(ev.Raw, &gone); jsonErr != nil {
				log.Warn().Err(jsonErr).Msg("malformed opponentGone")
				return
			}
			if gone.Gone {
				w.Send(Message{Kind: MsgOpponentGone, GoneAfterSec: gone.ClaimWinInSeconds})
			} else {
				w.Send(Message{Kind: MsgOpponentGone, GoneAfterSec: nil})
			}
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("game stream closed")
	}
}

// mailboxLoop is the worker's single-threaded event processing loop.
func (w *Worker) mailboxLoop() {
	defer w.wg.Done()
	log := botlog.For("worker").With().Str("game", w.gameID).Logger()

	for msg := range w.mailbox {
		switch msg.Kind {
		case MsgStart:
			greeting := fmt.Sprintf("Hey there! I am %s.", w.username)
			w.client.WriteInChat(w.gameID, greeting)
			w.client.WriteInSpectatorRoom(w.gameID, greeting)

		case MsgUpdate:
			w.play(*msg.State)

		case MsgEnd:
			w.farewell(*msg.State)
			w.cancel()
			return

		case MsgResign:
			log.Info().Msg("resigning by request")
			_ = w.client.ResignGame(w.gameID)

		case MsgOpponentGone:
			if msg.GoneAfterSec != nil {
				log.Info().Int64("seconds", *msg.GoneAfterSec).Msg("opponent gone, scheduling claim-victory")
				go w.client.ClaimVictoryAfterTimeout(time.Duration(*msg.GoneAfterSec)*time.Second, w.gameID)
			}

		case MsgChat:
			w.handleChat(*msg.Chat)

		case MsgTerminate:
			const farewell = "Sorry, I have to leave. I'll resign now!"
			w.client.WriteInChat(w.gameID, farewell)
			w.client.WriteInSpectatorRoom(w.gameID, farewell)
			_ = w.client.ResignGame(w.gameID)
			w.cancel()
			return

		case MsgNop:
		}
	}
}

// play replays any new server moves, picks a move for the current
// position within the time budget, and submits it.
func (w *Worker) play(state lichess.GameState) {
	log := botlog.For("worker").With().Str("game", w.gameID).Logger()

	if !state.Status.IsOngoing() {
		return
	}

	moves := strings.Fields(state.Moves)
	whiteToMove := len(moves)%2 == 0
	ourTurn := (w.color == lichess.White) == whiteToMove
	if !ourTurn {
		return
	}

	for _, m := range moves[w.knownMoves:] {
		if err := w.eng.ApplyMove(m); err != nil {
			log.Warn().Err(err).Str("move", m).Msg("failed to replay server move")
		}
	}
	w.knownMoves = len(moves)

	var timeLeft, increment int64
	if w.color == lichess.White {
		timeLeft, increment = state.WhiteTimeMs, state.WhiteIncMs
	} else {
		timeLeft, increment = state.BlackTimeMs, state.BlackIncMs
	}
	budgetMs := searchBudgetMs(timeLeft, increment)

	opts := w.eng.Options()
	opts.MaxTimeMs = budgetMs
	opts.MaxDepth = engine.MaxPly
	w.eng.SetOptions(opts)

	log.Info().Int("budget_ms", budgetMs).Msg("searching for a move")
	analysis := w.eng.Go()

	if analysis.Empty() {
		log.Error().Msg("empty analysis from engine")
		w.client.WriteInChat(w.gameID, "Error: could not find a move to play.")
		w.client.WriteInSpectatorRoom(w.gameID, "Error: could not find a move to play.")
		_ = w.client.ResignGame(w.gameID)
		return
	}

	cutoff := tieBreakCutoff(analysis)

	chosen := analysis.Lines[w.rng.Intn(cutoff)]
	move := chosen.Line.Get(0)
	log.Info().Str("move", move.String()).Str("eval", chosen.Eval.String()).Msg("playing move")

	if err := w.client.MakeMove(w.gameID, move.String(), false); err != nil {
		log.Error().Err(err).Msg("move submission failed after retries")
		w.client.WriteInChat(w.gameID, "Error: could not submit my move to the server.")
	}
}

// searchBudgetMs computes how long to spend on the next move, per the
// time-management formula: play fast under 10 seconds remaining,
// otherwise spend a fraction of the clock plus an increment bonus.
func searchBudgetMs(timeLeftMs, incrementMs int64) int {
	if incrementMs > maxIncrementMs {
		incrementMs = maxIncrementMs
	}
	if timeLeftMs < 10_000 {
		return 100
	}
	return int(timeLeftMs/90 + incrementMs*10/9)
}

// tieBreakCutoff returns how many of the top SearchResult lines are
// equally good as the best line, so the caller can pick uniformly at
// random among them. Plain scores tie within scoreTieBreakMargin pawns
// of each other; a mate score only ties with another mate in the same
// number of plies for the same side, since Eval.Score() is not
// meaningful on a mate line (it never carries a pawn-unit value).
func tieBreakCutoff(analysis engine.SearchResult) int {
	if len(analysis.Lines) == 0 {
		return 0
	}
	best := analysis.Lines[0].Eval
	cutoff := 1
	for cutoff < len(analysis.Lines) {
		cur := analysis.Lines[cutoff].Eval
		if best.IsMate() || cur.IsMate() {
			if !best.IsMate() || !cur.IsMate() || best.MatePlies() != cur.MatePlies() {
				break
			}
		} else {
			diff := best.Score() - cur.Score()
			if diff < 0 {
				diff = -diff
			}
			if diff > scoreTieBreakMargin {
				break
			}
		}
		cutoff++
	}
	return cutoff
}

func (w *Worker) farewell(state lichess.GameState) {
	message := "Good game"
	if state.Winner != "" {
		won := (state.Winner == "white") == (w.color == lichess.White)
		if won {
			message = "Always a pleasure to win =)"
		} else {
			message = "Well played! I'll get my revenge next time ;-)"
		}
	}
	w.client.WriteInChat(w.gameID, message)
	w.client.WriteInSpectatorRoom(w.gameID, message)
}

// handleChat replies to a small set of recognized spectator/opponent
// commands, ignoring the bot's own previously posted messages.
func (w *Worker) handleChat(chat lichess.ChatLine) {
	if chat.Username == w.username {
		return
	}

	switch strings.TrimSpace(chat.Text) {
	case "!help":
		if !w.helpSent {
			w.client.WriteInChatRoom(w.gameID, lichess.Room(chat.Room), "Commands: !help, !wait")
			w.helpSent = true
		}
	case "!wait":
		if !w.waitSent {
			w.client.WriteInChatRoom(w.gameID, lichess.Room(chat.Room), "Sure, take your time.")
			w.waitSent = true
		}
	}
}
