package engine

import (
	"sync/atomic"

	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

// Search bounds. Scores inside the window are plain centipawn-like ints
// scaled by scoreScale from board.Eval's pawn units; MateScore anchors the
// window far enough out that no real evaluation collides with a mate
// distance encoding.
const (
	Infinity   = 30000
	MateScore  = 29000
	MaxPly     = 128
	scoreScale = 100 // internal int score = pawn-unit score * scoreScale
)

func toIntScore(e board.Eval) int {
	if e.IsMate() {
		if e.MatePlies() > 0 {
			return MateScore - e.MatePlies()
		}
		return -MateScore - e.MatePlies()
	}
	return int(e.Score() * scoreScale)
}

func fromIntScore(score int) board.Eval {
	if score > MateScore-MaxPly {
		return board.NewMate(MateScore - score)
	}
	if score < -MateScore+MaxPly {
		return board.NewMate(-MateScore - score)
	}
	return board.NewScore(float32(score) / scoreScale)
}

// PVTable stores the principal variation as it is built bottom-up during
// the negamax recursion.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs a single cancellable alpha-beta search from a given
// position. It is single-flow: one call tree, one goroutine, stoppable
// via Stop() at any node boundary. Multi-PV and iterative deepening are
// driven by the caller (the Engine façade), which re-invokes Search at
// increasing depths and accumulates a SearchResult.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	mlc     *MoveListCache
	orderer *MoveOrderer
	eval    Evaluator

	nodes    uint64
	stopFlag *atomic.Bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo

	excluded []board.Move

	tm *TimeManager
}

// SetTimeManager attaches a time budget to the searcher. A nil tm (the
// default) means the search only stops on Stop(); a non-nil tm makes the
// node loop unwind as soon as its maximum time is exceeded, not merely
// between depth iterations.
func (s *Searcher) SetTimeManager(tm *TimeManager) {
	s.tm = tm
}

// NewSearcher creates a new searcher backed by the given transposition
// table, move-list cache, and evaluator. mlc may be nil, in which case
// every node regenerates its move list directly. stop is shared with the
// Engine so that a single Stop() call interrupts whichever depth
// iteration is currently running.
func NewSearcher(tt *TranspositionTable, mlc *MoveListCache, stop *atomic.Bool, eval Evaluator) *Searcher {
	return &Searcher{
		tt:       tt,
		mlc:      mlc,
		orderer:  NewMoveOrderer(),
		stopFlag: stop,
		eval:     eval,
	}
}

func (s *Searcher) legalMoves() *board.MoveList {
	if s.mlc == nil {
		return s.pos.GenerateLegalMoves()
	}
	return s.mlc.Get(s.pos.Hash, s.pos.GenerateLegalMoves)
}

// SetExcludedMoves excludes a set of root moves from consideration, used
// by multi-PV search to find the next-best line after the current ones.
func (s *Searcher) SetExcludedMoves(moves []board.Move) {
	s.excluded = moves
}

func (s *Searcher) isExcludedRoot(ply int, m board.Move) bool {
	if ply != 0 || len(s.excluded) == 0 {
		return false
	}
	for _, e := range s.excluded {
		if e == m {
			return true
		}
	}
	return false
}

// Reset clears per-search node counts and move-ordering heuristics ahead
// of a new root search (but not the transposition table, which persists
// across searches by design).
func (s *Searcher) Reset() {
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs alpha-beta negamax from pos to depth and returns the best
// root move together with its evaluation. The negamax score is from the
// side to move's perspective; Search negates it when Black is to move, so
// the returned evaluation is from White's perspective, per board.Eval's
// convention.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, board.Eval) {
	s.pos = pos.Copy()

	score := s.negamax(depth, 0, -Infinity, Infinity)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}

	eval := fromIntScore(score)
	if s.pos.SideToMove == board.Black {
		eval = eval.Negate()
	}
	return bestMove, eval
}

// GetPV returns the principal variation discovered by the most recent
// Search call, as a board.Variation.
func (s *Searcher) GetPV() board.Variation {
	var v board.Variation
	for i := 0; i < s.pv.length[0]; i++ {
		v.Append(s.pv.moves[0][i])
	}
	return v
}

// timedOut reports whether the search must unwind: either Stop() was
// called, or the attached TimeManager's maximum time has elapsed.
func (s *Searcher) timedOut() bool {
	if s.stopFlag.Load() {
		return true
	}
	return s.tm != nil && s.tm.ShouldStop()
}

// stopped gates timedOut behind a node-count mask so the clock isn't
// read on every node, while still checking often enough within a single
// iteration that a deadline interrupts mid-search, not just between
// depths.
func (s *Searcher) stopped() bool {
	return s.nodes&4095 == 0 && s.timedOut()
}

// negamax implements alpha-beta with transposition-table cutoffs, PV
// tracking, and killer/history-ordered move iteration. Scores are from
// the perspective of the side to move at this node (negamax convention).
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.stopped() {
		return 0
	}
	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	var ttMove board.Move
	if entry, found := s.tt.Probe(s.pos.Hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(toIntScore(entry.Eval), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()
	moves := s.legalMoves()

	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if s.isExcludedRoot(ply, move) {
			continue
		}

		s.undoStack[ply] = s.pos.MakeMove(move)
		if !s.undoStack[ply].Valid {
			continue
		}

		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		s.pos.UnmakeMove(move, s.undoStack[ply])

		if s.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			status := StatusOngoing
			s.tt.Store(s.pos.Hash, depth, fromIntScore(AdjustScoreToTT(score, ply)), TTLowerBound, status, bestMove)
			if !move.IsCapture(s.pos) {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
			}
			return score
		}
	}

	s.tt.Store(s.pos.Hash, depth, fromIntScore(AdjustScoreToTT(bestScore, ply)), flag, StatusOngoing, bestMove)
	return bestScore
}

// quiescence extends capturing lines past the horizon so the static
// evaluator is never asked to judge a position with a hanging capture on
// the board.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly || ply > maxQuiescencePly {
		return toIntScore(s.eval.Evaluate(s.pos))
	}
	if s.stopped() {
		return 0
	}
	s.nodes++

	standPat := toIntScore(s.eval.Evaluate(s.pos))
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	bigDelta := int(QueenValue * scoreScale)
	if standPat+bigDelta < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !s.pos.InCheck() {
			var captureValue int
			if move.IsEnPassant() {
				captureValue = int(PawnValue * scoreScale)
			} else if captured := s.pos.PieceAt(move.To()); captured != board.NoPiece {
				captureValue = int(pieceValues[captured.Type()] * scoreScale)
			}
			if move.IsPromotion() {
				captureValue += int((QueenValue - PawnValue) * scoreScale)
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			continue
		}

		score := -s.quiescence(ply+1, -beta, -alpha)

		s.pos.UnmakeMove(move, undo)

		if s.stopped() {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	return s.pos.IsInsufficientMaterial()
}
