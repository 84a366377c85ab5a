package game

import "laptudirm.com/x/kibitz/pkg/rules"

// Status is the lifecycle state of a game. A game only moves forward
// through the states, and goes back to NotStarted only with NewGame.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Over
)

func (status Status) String() string {
	switch status {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Over:
		return "over"
	default:
		return "unknown"
	}
}

// Reason is the reason a game ended.
type Reason int

const (
	NoReason Reason = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	FiftyMoveRule
	Repetition
	Resignation
	Timeout
)

// Decisive reports whether a game which ended for this reason has a winner.
func (reason Reason) Decisive() bool {
	return reason == Checkmate || reason == Resignation || reason == Timeout
}

// Result represents the result of a finished game. Winner is only
// meaningful if the Reason is decisive.
type Result struct {
	Reason Reason
	Winner rules.Side
}

// String returns the message shown when the game ends.
func (result Result) String() string {
	switch result.Reason {
	case Checkmate:
		return result.Winner.String() + " wins by checkmate!"
	case Resignation:
		return result.Winner.String() + " wins by resignation!"
	case Timeout:
		return result.Winner.String() + " wins on time!"
	case Stalemate:
		return "Draw by stalemate!"
	case InsufficientMaterial:
		return "Draw by insufficient material!"
	case FiftyMoveRule:
		return "Draw by 50-move rule!"
	case Repetition:
		return "Draw by repetition!"
	default:
		return ""
	}
}

// Score returns the result in PGN notation.
func (result Result) Score() string {
	switch {
	case result.Reason == NoReason:
		return "*"
	case !result.Reason.Decisive():
		return "1/2-1/2"
	case result.Winner == rules.White:
		return "1-0"
	default:
		return "0-1"
	}
}
