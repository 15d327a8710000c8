package engine

import "github.com/nobriot/schnecken-bot-sub001/internal/board"

// Evaluator scores a position from White's perspective. The search never
// calls Evaluate directly; it always goes through the Evaluator a Searcher
// was constructed with, so a future NNUE implementation can be swapped in
// at Engine construction without touching the search tree.
type Evaluator interface {
	Evaluate(pos *board.Position) board.Eval
}

// classicalEvaluator wraps the package-level handcrafted evaluation
// function, weighted per the engine's configured play style. It is the
// only Evaluator this module ships; NNUE is a Non-goal, but the slot
// exists so one can be dropped in later.
type classicalEvaluator struct {
	weights Weights
}

func (e classicalEvaluator) Evaluate(pos *board.Position) board.Eval {
	return EvaluateWithWeights(pos, e.weights)
}

// selectEvaluator resolves an Evaluator once, at Engine construction, from
// the requested Options, per the dynamic-dispatch-avoidance rule: the
// style-to-weights mapping is fixed here rather than branched on inside
// the search's hot path. opts.UseNNUE is accepted but has no alternate
// evaluator to select.
func selectEvaluator(opts Options) Evaluator {
	return classicalEvaluator{weights: weightsForStyle(opts.Style)}
}

// weightsForStyle maps a play style to the evaluation weighting profile
// named in the engine's Style documentation: aggressive leans on
// king-attack pressure and tactical risk-taking; conservative leans on
// material and dampens both.
func weightsForStyle(s Style) Weights {
	switch s {
	case StyleConservative:
		return Weights{Material: 1.15, KingAttack: 0.7, Tactical: 0.7}
	case StyleAggressive:
		return Weights{Material: 0.9, KingAttack: 1.6, Tactical: 1.3}
	case StyleProvocative:
		return Weights{Material: 0.85, KingAttack: 1.3, Tactical: 1.5}
	default:
		return defaultWeights()
	}
}
