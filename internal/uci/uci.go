// Package uci is a thin line-oriented adapter over the engine façade. The
// parsing loop itself only recognizes the commands and options named in
// the protocol surface; it owns no search logic of its own.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
)

// UCI drives an engine.Engine from stdin/stdout using the standard
// command subset: uci, isready, debug, setoption, position, ucinewgame,
// go, stop, quit.
type UCI struct {
	engine *engine.Engine
	out    *bufio.Writer
}

// New creates a UCI protocol handler over eng.
func New(eng *engine.Engine) *UCI {
	return &UCI{
		engine: eng,
		out:    bufio.NewWriter(os.Stdout),
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "debug":
			u.handleDebug(args)
		case "setoption":
			u.handleSetOption(args)
		case "ucinewgame":
			u.engine.Reset()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.engine.Stop()
			u.reportBestMove()
		case "quit":
			return
		case "d":
			u.println(u.currentPositionString())
		}
	}
}

func (u *UCI) println(s string) {
	fmt.Fprintln(u.out, s)
	u.out.Flush()
}

func (u *UCI) handleUCI() {
	u.println("id name schnecken-bot")
	u.println("id author schnecken-bot contributors")
	u.println("")
	u.println("option name Hash type spin default 64 min 1 max 4096")
	u.println("option name use_nnue type check default false")
	u.println("option name ponder type check default false")
	u.println("option name play_style type combo default Normal var Conservative var Normal var Aggressive var Provocative")
	u.println("option name multi_pv type spin default 1 min 0 max 5")
	u.println("uciok")
}

func (u *UCI) handleDebug(args []string) {
	opts := u.engine.Options()
	opts.Debug = len(args) > 0 && args[0] == "on"
	u.engine.SetOptions(opts)
}

func (u *UCI) handleSetOption(args []string) {
	name, value := parseSetOption(args)
	opts := u.engine.Options()

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			u.engine.ResizeCacheTables(mb)
		}
	case "use_nnue":
		opts.UseNNUE = value == "true"
	case "ponder":
		opts.Ponder = value == "true"
	case "play_style":
		switch strings.ToLower(value) {
		case "conservative":
			opts.Style = engine.StyleConservative
		case "aggressive":
			opts.Style = engine.StyleAggressive
		case "provocative":
			opts.Style = engine.StyleProvocative
		default:
			opts.Style = engine.StyleNormal
		}
	case "multi_pv":
		if n, err := strconv.Atoi(value); err == nil {
			opts.MultiPV = n
		}
	default:
		return
	}
	u.engine.SetOptions(opts)
}

// parseSetOption extracts name/value from "name <N...> value <V...>".
func parseSetOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	mode := ""
	for _, a := range args {
		switch a {
		case "name":
			mode = "name"
			continue
		case "value":
			mode = "value"
			continue
		}
		switch mode {
		case "name":
			nameParts = append(nameParts, a)
		case "value":
			valueParts = append(valueParts, a)
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (u *UCI) handlePosition(args []string) {
	fen, moves, ok := parsePosition(args)
	if !ok {
		return
	}

	if fen == "" {
		u.engine.Reset()
	} else if err := u.engine.SetPosition(fen); err != nil {
		return
	}

	for _, m := range moves {
		_ = u.engine.ApplyMove(m)
	}
}

// parsePosition splits a position command's arguments into a FEN
// string (empty for "startpos") and the trailing move list. ok is
// false when args names neither startpos nor fen.
func parsePosition(args []string) (fen string, moves []string, ok bool) {
	if len(args) == 0 {
		return "", nil, false
	}

	idx := 0
	switch args[0] {
	case "startpos":
		idx = 1
	case "fen":
		fenFields := args[1:]
		movesAt := len(fenFields)
		for i, f := range fenFields {
			if f == "moves" {
				movesAt = i
				break
			}
		}
		fen = strings.Join(fenFields[:movesAt], " ")
		idx = 1 + movesAt
	default:
		return "", nil, false
	}

	if idx < len(args) && args[idx] == "moves" {
		moves = args[idx+1:]
	}
	return fen, moves, true
}

func (u *UCI) handleGo(args []string) {
	depth, timeMs := parseGoOptions(args)

	opts := u.engine.Options()
	opts.MaxDepth = depth
	opts.MaxTimeMs = timeMs
	u.engine.SetOptions(opts)
	u.engine.GoCancellable()
}

// parseGoOptions reads the "depth"/"movetime"/"infinite" tokens of a go
// command into a depth limit and a time limit in milliseconds. Either
// limit may be left at zero, meaning unlimited.
func parseGoOptions(args []string) (depth, timeMs int) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				if d, err := strconv.Atoi(args[i+1]); err == nil {
					depth = d
				}
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				if ms, err := strconv.Atoi(args[i+1]); err == nil {
					timeMs = ms
				}
				i++
			}
		case "infinite":
			depth = engine.MaxPly
			timeMs = 0
		}
	}
	return depth, timeMs
}

func (u *UCI) reportBestMove() {
	move := u.engine.GetBestMove()
	u.println("bestmove " + move.String())
}

func (u *UCI) currentPositionString() string {
	// Best-effort debug rendering; the façade does not expose the raw
	// *board.Position, so report the best line found so far instead.
	analysis := u.engine.GetAnalysis()
	if best, ok := analysis.Best(); ok {
		return best.Line.String() + " (" + best.Eval.String() + ")"
	}
	return "(no analysis yet)"
}
