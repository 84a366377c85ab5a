package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"laptudirm.com/x/kibitz/pkg/clock"
	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
	"laptudirm.com/x/kibitz/pkg/session"
)

var (
	selected = color.New(color.BgYellow, color.FgBlack).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// terminal prints session updates as text. Updates come from the session's
// goroutine while board and help requests come from the input reader.
type terminal struct {
	out io.Writer

	mu   sync.Mutex
	last session.Update
	seen bool
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

// view is the part of an update worth printing again when it changes.
type view struct {
	status      game.Status
	moves       int
	selected    rules.Square
	mode        game.Mode
	timeControl string
	thinking    bool
}

func viewOf(update session.Update) view {
	return view{
		status:      update.Status,
		moves:       len(update.Moves),
		selected:    update.Selected,
		mode:        update.Mode,
		timeControl: update.TimeControl,
		thinking:    update.Thinking,
	}
}

func (term *terminal) update(update session.Update) {
	term.mu.Lock()
	defer term.mu.Unlock()

	changed := !term.seen || viewOf(update) != viewOf(term.last)
	term.last, term.seen = update, true

	if changed {
		fmt.Fprint(term.out, render(update))
	}
}

func (term *terminal) redraw() {
	term.mu.Lock()
	defer term.mu.Unlock()

	if term.seen {
		fmt.Fprint(term.out, render(term.last))
	}
}

func (term *terminal) help() {
	fmt.Fprintln(term.out, faint("commands: start resign new mode tc board quit, a square like e2, or a move like e2e4"))
}

func (term *terminal) warn(err error) {
	fmt.Fprintln(term.out, color.RedString("%v", err))
}

// render draws the board from White's side followed by the clocks and
// the state of the game.
func render(update session.Update) string {
	var b strings.Builder

	b.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&b, " %d ", rank+1)
		for file := 0; file < 8; file++ {
			sq := rules.NewSquare(file, rank)

			cell := "."
			if piece := update.Board[sq]; piece.Type != rules.NoPieceType {
				cell = piece.String()
			}

			if sq == update.Selected {
				cell = selected(cell)
			}

			b.WriteString(" " + cell)
		}
		b.WriteString("\n")
	}
	b.WriteString("    a b c d e f g h\n\n")

	fmt.Fprintf(&b, " White %s | Black %s   %s\n",
		clock.Format(update.Remaining[rules.White]),
		clock.Format(update.Remaining[rules.Black]),
		faint(update.TimeControl+", "+update.Mode.String()),
	)

	if n := len(update.Moves); n > 0 {
		fmt.Fprintf(&b, " last move: %s\n", update.Moves[n-1])
	}

	b.WriteString(" " + statusLine(update) + "\n")
	return b.String()
}

func statusLine(update session.Update) string {
	switch update.Status {
	case game.NotStarted:
		return color.YellowString("Type start to begin.")
	case game.Over:
		return color.New(color.FgRed, color.Bold).Sprint(update.Result.String()) + " " + update.Result.Score()
	}

	line := update.SideToMove.String() + " to move"
	if update.Thinking {
		line += color.CyanString(" (thinking...)")
	}

	return color.GreenString(line)
}
