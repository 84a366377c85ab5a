package game

import (
	"time"

	"laptudirm.com/x/kibitz/pkg/rules"
)

// Snapshot is a read-only copy of everything needed to display a game.
type Snapshot struct {
	Status Status
	Result Result

	FEN        string
	SideToMove rules.Side
	Board      [64]rules.Piece
	Moves      []rules.Move

	Remaining [rules.SideN]time.Duration
	Active    rules.Side
	Running   bool

	Mode        Mode
	AISide      rules.Side
	TimeControl string

	// AIToMove is set when the computer should be asked for a move.
	AIToMove   bool
	Generation uint64
}

func (g *Game) Snapshot() Snapshot {
	snapshot := Snapshot{
		Status: g.status,
		Result: g.result,

		FEN:        g.position.FEN(),
		SideToMove: g.position.SideToMove(),
		Moves:      g.position.Moves(),

		Mode:        g.settings.Mode,
		AISide:      g.settings.AISide,
		TimeControl: g.settings.TimeControl().String(),

		AIToMove:   g.AIToMove(),
		Generation: g.generation,
	}

	for side := rules.White; side <= rules.Black; side++ {
		snapshot.Remaining[side] = g.clock.Remaining(side)
	}

	snapshot.Active, snapshot.Running = g.clock.Active()

	for sq := rules.Square(0); sq < rules.NoSquare; sq++ {
		if piece, ok := g.oracle.PieceAt(g.position, sq); ok {
			snapshot.Board[sq] = piece
		}
	}

	return snapshot
}
