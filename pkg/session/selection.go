package session

import (
	"time"

	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
)

// Selection implements two-click move input. The first click selects one
// of the side to move's pieces, the second one either completes a move,
// selects another friendly piece or clears the selection.
type Selection struct {
	square rules.Square
	ok     bool
}

// Square returns the selected square, if any.
func (sel *Selection) Square() (rules.Square, bool) {
	return sel.square, sel.ok
}

func (sel *Selection) Clear() {
	sel.square, sel.ok = rules.NoSquare, false
}

// Click handles a click on the given square and reports whether it
// completed a move.
func (sel *Selection) Click(g *game.Game, sq rules.Square, now time.Time) bool {
	pos := g.Position()
	piece, occupied := g.Oracle().PieceAt(pos, sq)
	friendly := occupied && piece.Side == pos.SideToMove()

	if !sel.ok {
		if friendly {
			sel.square, sel.ok = sq, true
		}

		return false
	}

	if g.SubmitMove(sel.square, sq, rules.NoPieceType, now) {
		sel.Clear()
		return true
	}

	if friendly {
		sel.square = sq
	} else {
		sel.Clear()
	}

	return false
}
