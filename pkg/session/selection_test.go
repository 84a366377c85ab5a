package session

import (
	"testing"
	"time"

	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
)

func startedGame(t *testing.T, settings game.Settings) *game.Game {
	t.Helper()

	oracle, err := rules.GetOracle("chess", "")
	if err != nil {
		t.Fatal(err)
	}

	g := game.New(oracle, settings)
	g.Start(time.Now())
	return g
}

func square(t *testing.T, str string) rules.Square {
	t.Helper()

	sq, err := rules.ParseSquare(str)
	if err != nil {
		t.Fatal(err)
	}

	return sq
}

func TestSelection(t *testing.T) {
	g := startedGame(t, game.DefaultSettings())
	now := time.Now()

	var sel Selection
	if _, ok := sel.Square(); ok {
		t.Fatal("zero Selection has a square selected")
	}

	clicks := []struct {
		square   string
		moved    bool
		selected string
	}{
		{"e4", false, ""},   // empty square
		{"e7", false, ""},   // opponent's piece
		{"e2", false, "e2"}, // own piece
		{"d2", false, "d2"}, // another own piece replaces it
		{"d5", false, ""},   // illegal target clears it
		{"g1", false, "g1"},
		{"f3", true, ""}, // completes Nf3
		{"g8", false, "g8"},
		{"g8", false, "g8"}, // clicking it again keeps it
		{"f6", true, ""},
	}

	for i, click := range clicks {
		moved := sel.Click(g, square(t, click.square), now)
		if moved != click.moved {
			t.Fatalf("click %d on %s: moved = %v, want %v", i, click.square, moved, click.moved)
		}

		sq, ok := sel.Square()
		switch {
		case click.selected == "" && ok:
			t.Fatalf("click %d on %s: %s selected, want none", i, click.square, sq)
		case click.selected != "" && (!ok || sq.String() != click.selected):
			t.Fatalf("click %d on %s: selected %s (%v), want %s", i, click.square, sq, ok, click.selected)
		}
	}

	moves := g.Position().Moves()
	if len(moves) != 2 || moves[0].String() != "g1f3" || moves[1].String() != "g8f6" {
		t.Errorf("moves = %v, want [g1f3 g8f6]", moves)
	}
}
