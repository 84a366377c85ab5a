package session

import "laptudirm.com/x/kibitz/pkg/rules"

// EventKind is the type of an input event.
type EventKind int

const (
	SquareClicked EventKind = iota
	StartClicked
	ResignClicked
	NewGameClicked
	ModeToggled
	TimeControlCycled
	MoveEntered
	Quit
)

func (kind EventKind) String() string {
	switch kind {
	case SquareClicked:
		return "square"
	case StartClicked:
		return "start"
	case ResignClicked:
		return "resign"
	case NewGameClicked:
		return "new"
	case ModeToggled:
		return "mode"
	case TimeControlCycled:
		return "tc"
	case MoveEntered:
		return "move"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is an input event. Square is set for SquareClicked and Move for
// MoveEntered.
type Event struct {
	Kind   EventKind
	Square rules.Square
	Move   rules.Move
}
