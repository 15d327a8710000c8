package uci

import (
	"reflect"
	"testing"

	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
)

func TestParseSetOptionNameAndValue(t *testing.T) {
	name, value := parseSetOption([]string{"name", "Hash", "value", "128"})
	if name != "Hash" || value != "128" {
		t.Errorf("got name=%q value=%q, want name=Hash value=128", name, value)
	}
}

func TestParseSetOptionMultiWordName(t *testing.T) {
	name, value := parseSetOption([]string{"name", "play", "style", "value", "Aggressive"})
	if name != "play style" || value != "Aggressive" {
		t.Errorf("got name=%q value=%q", name, value)
	}
}

func TestParseSetOptionNoValue(t *testing.T) {
	name, value := parseSetOption([]string{"name", "ponder"})
	if name != "ponder" || value != "" {
		t.Errorf("got name=%q value=%q, want name=ponder value=empty", name, value)
	}
}

func TestParsePositionStartpos(t *testing.T) {
	fen, moves, ok := parsePosition([]string{"startpos", "moves", "e2e4", "e7e5"})
	if !ok {
		t.Fatal("expected ok")
	}
	if fen != "" {
		t.Errorf("expected empty fen for startpos, got %q", fen)
	}
	if !reflect.DeepEqual(moves, []string{"e2e4", "e7e5"}) {
		t.Errorf("got moves %v", moves)
	}
}

func TestParsePositionStartposNoMoves(t *testing.T) {
	fen, moves, ok := parsePosition([]string{"startpos"})
	if !ok || fen != "" || len(moves) != 0 {
		t.Errorf("got fen=%q moves=%v ok=%v", fen, moves, ok)
	}
}

func TestParsePositionFen(t *testing.T) {
	args := []string{"fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", "w", "KQkq", "-", "0", "1", "moves", "d2d4"}
	fen, moves, ok := parsePosition(args)
	if !ok {
		t.Fatal("expected ok")
	}
	wantFEN := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	if fen != wantFEN {
		t.Errorf("got fen %q, want %q", fen, wantFEN)
	}
	if !reflect.DeepEqual(moves, []string{"d2d4"}) {
		t.Errorf("got moves %v", moves)
	}
}

func TestParsePositionFenNoMoves(t *testing.T) {
	args := []string{"fen", "8/8/8/8/8/8/8/K6k", "w", "-", "-", "0", "1"}
	fen, moves, ok := parsePosition(args)
	if !ok {
		t.Fatal("expected ok")
	}
	if fen != "8/8/8/8/8/8/8/K6k w - - 0 1" {
		t.Errorf("got fen %q", fen)
	}
	if len(moves) != 0 {
		t.Errorf("expected no moves, got %v", moves)
	}
}

func TestParsePositionRejectsUnknownKeyword(t *testing.T) {
	_, _, ok := parsePosition([]string{"garbage"})
	if ok {
		t.Error("expected ok=false for an unrecognized position keyword")
	}
}

func TestParsePositionEmptyArgs(t *testing.T) {
	_, _, ok := parsePosition(nil)
	if ok {
		t.Error("expected ok=false for no arguments")
	}
}

func TestParseGoOptionsDepth(t *testing.T) {
	depth, timeMs := parseGoOptions([]string{"depth", "12"})
	if depth != 12 || timeMs != 0 {
		t.Errorf("got depth=%d timeMs=%d", depth, timeMs)
	}
}

func TestParseGoOptionsMovetime(t *testing.T) {
	depth, timeMs := parseGoOptions([]string{"movetime", "5000"})
	if depth != 0 || timeMs != 5000 {
		t.Errorf("got depth=%d timeMs=%d", depth, timeMs)
	}
}

func TestParseGoOptionsInfinite(t *testing.T) {
	depth, timeMs := parseGoOptions([]string{"infinite"})
	if depth != engine.MaxPly || timeMs != 0 {
		t.Errorf("got depth=%d timeMs=%d, want depth=%d timeMs=0", depth, timeMs, engine.MaxPly)
	}
}

func TestParseGoOptionsEmpty(t *testing.T) {
	depth, timeMs := parseGoOptions(nil)
	if depth != 0 || timeMs != 0 {
		t.Errorf("got depth=%d timeMs=%d, want both 0", depth, timeMs)
	}
}
