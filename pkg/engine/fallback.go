package engine

import (
	"math/rand"

	"laptudirm.com/x/kibitz/pkg/rules"
)

// Fallback picks a move without an engine: a random capture if there is
// one, otherwise a random checking move, otherwise any random move.
type Fallback struct {
	oracle rules.Oracle
	rng    *rand.Rand
}

func NewFallback(oracle rules.Oracle, seed int64) *Fallback {
	return &Fallback{
		oracle: oracle,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Select returns a legal move in the given position. It panics if the
// position has no legal moves, since such a position ends the game.
func (fallback *Fallback) Select(pos rules.Position) rules.Move {
	moves := fallback.oracle.LegalMoves(pos)
	if len(moves) == 0 {
		panic("fallback: no legal moves in " + pos.FEN())
	}

	var captures, checks []rules.Move
	for _, move := range moves {
		switch {
		case fallback.oracle.IsCapture(pos, move):
			captures = append(captures, move)
		case fallback.oracle.GivesCheck(pos, move):
			checks = append(checks, move)
		}
	}

	switch {
	case len(captures) > 0:
		return fallback.pick(captures)
	case len(checks) > 0:
		return fallback.pick(checks)
	default:
		return fallback.pick(moves)
	}
}

func (fallback *Fallback) pick(moves []rules.Move) rules.Move {
	return moves[fallback.rng.Intn(len(moves))]
}
