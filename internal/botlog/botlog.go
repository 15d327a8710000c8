// Package botlog wires structured, leveled logging for the bot
// orchestrator, per-game workers, and the lichess client. The engine's own
// search hot path keeps plain assertions rather than pay zerolog's
// allocation cost there.
package botlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Init installs a logger writing to w at the given level. Call once at
// startup; defaults to a console writer on stderr at InfoLevel otherwise.
func Init(w io.Writer, level zerolog.Level) {
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Get returns the process-wide logger.
func Get() *zerolog.Logger {
	return &logger
}

// For returns a child logger tagged with a component name, e.g. "bot",
// "lichess", "worker".
func For(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
