package bot

import "github.com/nobriot/schnecken-bot-sub001/internal/lichess"

// Message is the per-game worker's mailbox payload. Exactly one of the
// optional fields is populated, selected by Kind.
type Message struct {
	Kind MessageKind

	Start        *lichess.GameStart
	State        *lichess.GameState
	GoneAfterSec *int64
	Chat         *lichess.ChatLine
}

// MessageKind tags a Message the way the original Rust GameMessage enum
// did, so the worker loop can switch on it directly.
type MessageKind int

const (
	MsgStart MessageKind = iota
	MsgUpdate
	MsgEnd
	MsgResign
	MsgOpponentGone
	MsgTerminate
	MsgChat
	MsgNop
)
