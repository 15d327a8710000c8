// Package bot implements the lichess-playing orchestrator: a bounded set
// of per-game workers, fed from the account-wide event stream.
package bot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nobriot/schnecken-bot-sub001/internal/book"
	"github.com/nobriot/schnecken-bot-sub001/internal/botlog"
	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
	"github.com/nobriot/schnecken-bot-sub001/internal/lichess"
)

// shutdownDrainTimeout bounds how long RequestExit waits for workers to
// resign and exit their mailbox loop before giving up on a clean drain.
const shutdownDrainTimeout = 10 * time.Second

// maxConcurrentGames bounds how many games the bot plays at once.
const maxConcurrentGames = 4

// State is the orchestrator's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	ShuttingDown
)

// Bot is the lichess-playing orchestrator.
type Bot struct {
	client   *lichess.Client
	username string
	style    engine.Style
	cacheMB  int

	normalBook      *book.Book
	provocativeBook *book.Book

	preferredOpponents []string

	mu     sync.Mutex
	state  State
	games  map[string]*Worker
	cancel context.CancelFunc
}

// New builds a Bot. preferredOpponents is consulted in order by
// ChallengeSomebody; cacheMB sizes each per-game engine's hash tables.
// Either book may be nil, in which case that style searches from move one.
func New(client *lichess.Client, username string, style engine.Style, cacheMB int, preferredOpponents []string, normalBook, provocativeBook *book.Book) *Bot {
	return &Bot{
		client:             client,
		username:           username,
		style:              style,
		cacheMB:            cacheMB,
		normalBook:         normalBook,
		provocativeBook:    provocativeBook,
		preferredOpponents: preferredOpponents,
		state:              Idle,
		games:              make(map[string]*Worker),
	}
}

// Run subscribes to the account event stream and dispatches gameStart,
// gameFinish, and challenge events until ctx is canceled or RequestExit
// is called.
func (b *Bot) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.state = Running
	b.cancel = cancel
	b.mu.Unlock()

	log := botlog.For("bot")
	log.Info().Msg("bot starting account event stream")

	err := b.client.StreamAccountEvents(ctx, func(event lichess.AccountEvent) {
		switch event.Type {
		case "gameStart":
			if event.Game != nil {
				b.addGame(*event.Game)
			}
		case "gameFinish":
			if event.Game != nil {
				b.removeGame(event.Game.GameID)
			}
		case "challenge":
			log.Info().Msg("incoming challenge event received")
		case "challengeDeclined":
			log.Info().Msg("our challenge was declined")
		}
	})

	b.purge()
	return err
}

// ChallengeSomebody iterates the preferred-opponents list in order and
// challenges the first one found online.
func (b *Bot) ChallengeSomebody() {
	log := botlog.For("bot")
	for _, opponent := range b.preferredOpponents {
		if !b.client.IsOnline(opponent) {
			continue
		}
		if err := b.client.ChallengeUser(opponent, true); err != nil {
			log.Warn().Err(err).Str("opponent", opponent).Msg("challenge failed")
			continue
		}
		log.Info().Str("opponent", opponent).Msg("challenge sent")
		return
	}
	log.Info().Msg("no preferred opponent is online")
}

// RequestExit transitions the bot to ShuttingDown. If abortGames, every
// active worker is sent Terminate (which resigns), and RequestExit fans
// out a bounded wait for each worker's mailbox loop to drain before
// returning; otherwise games are left to run to completion on their own
// and RequestExit returns immediately.
func (b *Bot) RequestExit(abortGames bool) {
	b.mu.Lock()
	b.state = ShuttingDown
	workers := make([]*Worker, 0, len(b.games))
	for _, w := range b.games {
		workers = append(workers, w)
	}
	cancel := b.cancel
	b.mu.Unlock()

	if abortGames {
		for _, w := range workers {
			w.Send(Message{Kind: MsgTerminate})
		}

		ctx, drainCancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
		defer drainCancel()

		var g errgroup.Group
		for _, w := range workers {
			w := w
			g.Go(func() error {
				select {
				case <-w.doneCh:
				case <-ctx.Done():
					botlog.For("bot").Warn().Str("game", w.gameID).Msg("worker did not drain before shutdown timeout")
				}
				return nil
			})
		}
		_ = g.Wait()
	}
	if cancel != nil {
		cancel()
	}
}

// State returns the orchestrator's current lifecycle state.
func (b *Bot) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ActiveGames returns the number of games currently tracked.
func (b *Bot) ActiveGames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.games)
}

func (b *Bot) addGame(start lichess.GameStart) {
	log := botlog.For("bot")

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.games[start.GameID]; exists {
		return
	}
	if len(b.games) >= maxConcurrentGames {
		log.Error().Str("game", start.GameID).Msg("cannot add more games, the set is full")
		return
	}

	b.games[start.GameID] = NewWorker(start, b.client, b.style, b.cacheMB, b.username, b.normalBook, b.provocativeBook)
}

func (b *Bot) removeGame(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.games, gameID)
}

// purge drops any worker whose event loop has already exited.
func (b *Bot) purge() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, w := range b.games {
		if w.IsOver() {
			delete(b.games, id)
		}
	}
}
