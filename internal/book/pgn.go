package book

import (
	"fmt"
	"strings"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

// CompileText builds a Book from a PGN-ish or plain UCI move-list text
// source. Compiling is a one-shot offline step (see store.go LoadFromDir
// for the read-only runtime path): every game in source is replayed from
// the starting position and every move played becomes a book entry for
// the position it was played from.
//
// The grammar tolerates move-number markers ("12.", "12..."), numeric
// annotation glyphs and their ASCII shorthand (!, ?, !?, ?!), check/mate
// annotations (+, #), castling tokens (O-O, O-O-O, 0-0, 0-0-0), and game
// result terminators (1-0, 0-1, 1/2-1/2, *), which end the current game.
func CompileText(source string) (*Book, error) {
	b := New()

	pos, err := board.ParseFEN(board.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("book: compile: %w", err)
	}

	for _, raw := range strings.Fields(source) {
		tok := stripAnnotations(raw)
		if tok == "" {
			continue
		}
		if isMoveNumber(tok) {
			continue
		}
		if isResultToken(tok) {
			pos, err = board.ParseFEN(board.StartFEN)
			if err != nil {
				return nil, fmt.Errorf("book: compile: %w", err)
			}
			continue
		}

		move, err := parseSANOrUCI(pos, tok)
		if err != nil {
			// A malformed or unrecognized token ends the current game
			// rather than failing the whole compile: PGN sources in the
			// wild carry commentary and variations we don't parse.
			pos, _ = board.ParseFEN(board.StartFEN)
			continue
		}

		b.add(pos.Hash, move)
		pos.MakeMove(move)
	}

	return b, nil
}

func isMoveNumber(tok string) bool {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	for i < len(tok) {
		if tok[i] != '.' {
			return false
		}
		i++
	}
	return true
}

func isResultToken(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// stripAnnotations removes NAG suffixes (!, ?, !?, ?!, $N) and check/mate
// markers (+, #) from a move token.
func stripAnnotations(tok string) string {
	tok = strings.TrimSpace(tok)
	for {
		switch {
		case strings.HasSuffix(tok, "!!"), strings.HasSuffix(tok, "??"),
			strings.HasSuffix(tok, "!?"), strings.HasSuffix(tok, "?!"):
			tok = tok[:len(tok)-2]
		case strings.HasSuffix(tok, "!"), strings.HasSuffix(tok, "?"),
			strings.HasSuffix(tok, "+"), strings.HasSuffix(tok, "#"):
			tok = tok[:len(tok)-1]
		default:
			return tok
		}
	}
}

// parseSANOrUCI resolves a single movetext token against the legal moves
// of pos, accepting either SAN (Nf3, exd5, O-O, e8=Q) or plain UCI
// (e2e4, e7e8q).
func parseSANOrUCI(pos *board.Position, tok string) (board.Move, error) {
	if m, err := board.ParseMove(tok, pos); err == nil {
		if pos.IsLegal(m) {
			return m, nil
		}
	}
	return parseSAN(pos, tok)
}

func parseSAN(pos *board.Position, tok string) (board.Move, error) {
	legal := pos.GenerateLegalMoves()

	if tok == "O-O" || tok == "0-0" {
		return findCastling(pos, legal, true)
	}
	if tok == "O-O-O" || tok == "0-0-0" {
		return findCastling(pos, legal, false)
	}

	s := tok
	var promo board.PieceType
	hasPromo := false
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		p, ok := pieceFromLetter(s[idx+1:])
		if !ok {
			return board.NoMove, fmt.Errorf("book: bad promotion in %q", tok)
		}
		promo = p
		hasPromo = true
		s = s[:idx]
	}

	piece := board.Pawn
	if len(s) > 0 && isPieceLetter(s[0]) {
		p, _ := pieceFromLetter(s[:1])
		piece = p
		s = s[1:]
	}

	s = strings.ReplaceAll(s, "x", "")
	if len(s) < 2 {
		return board.NoMove, fmt.Errorf("book: unparseable move token %q", tok)
	}

	destStr := s[len(s)-2:]
	dest, err := board.ParseSquare(destStr)
	if err != nil {
		return board.NoMove, fmt.Errorf("book: bad destination in %q: %w", tok, err)
	}
	disambig := s[:len(s)-2]

	var match board.Move
	found := 0
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.To() != dest {
			continue
		}
		mp := pos.PieceAt(m.From())
		if mp == board.NoPiece || mp.Type() != piece {
			continue
		}
		if hasPromo && (!m.IsPromotion() || m.Promotion() != promo) {
			continue
		}
		if !hasPromo && m.IsPromotion() {
			continue
		}
		if disambig != "" && !matchesDisambiguation(m.From(), disambig) {
			continue
		}
		match = m
		found++
	}

	if found != 1 {
		return board.NoMove, fmt.Errorf("book: move token %q did not resolve to exactly one legal move (%d candidates)", tok, found)
	}
	return match, nil
}

func findCastling(pos *board.Position, legal *board.MoveList, kingSide bool) (board.Move, error) {
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if !m.IsCastling() {
			continue
		}
		toFile := m.To().File()
		if kingSide && toFile == 6 {
			return m, nil
		}
		if !kingSide && toFile == 2 {
			return m, nil
		}
	}
	return board.NoMove, fmt.Errorf("book: no legal castling move available")
}

func matchesDisambiguation(from board.Square, disambig string) bool {
	for _, c := range disambig {
		switch {
		case c >= 'a' && c <= 'h':
			if from.File() != int(c-'a') {
				return false
			}
		case c >= '1' && c <= '8':
			if from.Rank() != int(c-'1') {
				return false
			}
		}
	}
	return true
}

func isPieceLetter(c byte) bool {
	switch c {
	case 'K', 'Q', 'R', 'B', 'N':
		return true
	}
	return false
}

func pieceFromLetter(s string) (board.PieceType, bool) {
	if len(s) == 0 {
		return 0, false
	}
	switch s[0] {
	case 'K':
		return board.King, true
	case 'Q':
		return board.Queen, true
	case 'R':
		return board.Rook, true
	case 'B':
		return board.Bishop, true
	case 'N':
		return board.Knight, true
	}
	return 0, false
}
