package game

import (
	"math/rand"
	"testing"
	"time"

	"laptudirm.com/x/kibitz/pkg/rules"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newGame(t *testing.T, fen string, settings Settings) *Game {
	t.Helper()

	oracle, err := rules.GetOracle("chess", fen)
	if err != nil {
		t.Fatal(err)
	}

	return New(oracle, settings)
}

func sq(t *testing.T, str string) rules.Square {
	t.Helper()

	square, err := rules.ParseSquare(str)
	if err != nil {
		t.Fatal(err)
	}

	return square
}

// play submits UCI moves one second apart, failing on the first rejected
// one.
func play(t *testing.T, g *Game, now time.Time, moves ...string) time.Time {
	t.Helper()

	for _, str := range moves {
		move, err := rules.ParseMove(str)
		if err != nil {
			t.Fatal(err)
		}

		now = now.Add(time.Second)
		if !g.SubmitMove(move.From, move.To, move.Promotion, now) {
			t.Fatalf("move %s rejected in %s", str, g.Position().FEN())
		}
	}

	return now
}

func TestGameOpeningMove(t *testing.T) {
	g := newGame(t, "", DefaultSettings())
	if !g.Start(epoch) {
		t.Fatal("Start() = false")
	}

	play(t, g, epoch, "e2e4")

	snapshot := g.Snapshot()
	if snapshot.Status != InProgress {
		t.Errorf("status = %s, want %s", snapshot.Status, InProgress)
	}

	if snapshot.SideToMove != rules.Black {
		t.Errorf("side to move = %s, want Black", snapshot.SideToMove)
	}

	if snapshot.Active != rules.Black || !snapshot.Running {
		t.Errorf("clock active = %s (running %v), want Black", snapshot.Active, snapshot.Running)
	}

	if got := snapshot.Remaining[rules.White]; got != 5*time.Minute-time.Second {
		t.Errorf("White has %s, want 4m59s", got)
	}

	if got := snapshot.Board[sq(t, "e4")]; got != (rules.Piece{Type: rules.Pawn, Side: rules.White}) {
		t.Errorf("e4 holds %v, want a white pawn", got)
	}

	if len(snapshot.Moves) != 1 || snapshot.Moves[0].String() != "e2e4" {
		t.Errorf("moves = %v", snapshot.Moves)
	}
}

func TestGameRejectsIllegalMoves(t *testing.T) {
	g := newGame(t, "", DefaultSettings())

	if g.SubmitMove(sq(t, "e2"), sq(t, "e4"), rules.NoPieceType, epoch) {
		t.Error("move accepted before the game started")
	}

	g.Start(epoch)
	before := g.Snapshot()

	for _, move := range [][2]string{{"e2", "e5"}, {"e7", "e5"}, {"e1", "e2"}, {"a3", "a4"}} {
		if g.SubmitMove(sq(t, move[0]), sq(t, move[1]), rules.NoPieceType, epoch) {
			t.Errorf("illegal move %s%s accepted", move[0], move[1])
		}
	}

	after := g.Snapshot()
	if after.FEN != before.FEN || after.Status != before.Status || after.SideToMove != before.SideToMove {
		t.Errorf("illegal moves changed the game: %+v", after)
	}
}

func TestGameCheckmate(t *testing.T) {
	g := newGame(t, "", DefaultSettings())
	g.Start(epoch)

	play(t, g, epoch, "f2f3", "e7e5", "g2g4", "d8h4")

	if g.Status() != Over {
		t.Fatalf("status = %s, want %s", g.Status(), Over)
	}

	want := Result{Reason: Checkmate, Winner: rules.Black}
	if g.Result() != want {
		t.Errorf("result = %+v, want %+v", g.Result(), want)
	}

	if got := g.Result().String(); got != "Black wins by checkmate!" {
		t.Errorf("result text = %q", got)
	}

	if g.Snapshot().Running {
		t.Error("clock still running after checkmate")
	}
}

func TestGameTimeout(t *testing.T) {
	g := newGame(t, "", DefaultSettings())
	g.Start(epoch)

	g.Tick(epoch.Add(4 * time.Minute))
	if g.Status() != InProgress {
		t.Fatalf("game ended with time left: %s", g.Result())
	}

	g.Tick(epoch.Add(5 * time.Minute))
	if g.Status() != Over {
		t.Fatalf("status = %s, want %s", g.Status(), Over)
	}

	want := Result{Reason: Timeout, Winner: rules.Black}
	if g.Result() != want {
		t.Errorf("result = %+v, want %+v", g.Result(), want)
	}

	if got := g.Result().String(); got != "Black wins on time!" {
		t.Errorf("result text = %q", got)
	}

	if g.Remaining(rules.White) != 0 || g.Remaining(rules.Black) != 5*time.Minute {
		t.Errorf("remaining = %s / %s", g.Remaining(rules.White), g.Remaining(rules.Black))
	}
}

func TestGameMoveAfterFlag(t *testing.T) {
	g := newGame(t, "", DefaultSettings())
	g.Start(epoch)

	if g.SubmitMove(sq(t, "e2"), sq(t, "e4"), rules.NoPieceType, epoch.Add(6*time.Minute)) {
		t.Error("move accepted after the mover's time ran out")
	}

	if g.Result().Reason != Timeout {
		t.Errorf("result = %+v, want a timeout", g.Result())
	}
}

func TestGameResign(t *testing.T) {
	g := newGame(t, "", DefaultSettings())

	if g.Resign() {
		t.Error("Resign() before the start succeeded")
	}

	g.Start(epoch)
	play(t, g, epoch, "e2e4")

	if !g.Resign() {
		t.Fatal("Resign() = false")
	}

	want := Result{Reason: Resignation, Winner: rules.White}
	if g.Result() != want {
		t.Errorf("result = %+v, want %+v", g.Result(), want)
	}

	if g.Resign() {
		t.Error("second Resign() succeeded")
	}

	if g.Result() != want {
		t.Errorf("second Resign() changed the result to %+v", g.Result())
	}
}

func TestGamePromotesToQueen(t *testing.T) {
	g := newGame(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", DefaultSettings())
	g.Start(epoch)

	if !g.SubmitMove(sq(t, "a7"), sq(t, "a8"), rules.NoPieceType, epoch) {
		t.Fatal("promotion rejected")
	}

	snapshot := g.Snapshot()
	if got := snapshot.Moves[0].String(); got != "a7a8q" {
		t.Errorf("played %s, want a7a8q", got)
	}

	if got := snapshot.Board[sq(t, "a8")]; got.Type != rules.Queen {
		t.Errorf("a8 holds %v, want a queen", got)
	}

	// an explicit piece is kept
	g.NewGame()
	g.Start(epoch)
	if !g.SubmitMove(sq(t, "a7"), sq(t, "a8"), rules.Knight, epoch) {
		t.Fatal("underpromotion rejected")
	}

	if got := g.Snapshot().Board[sq(t, "a8")]; got.Type != rules.Knight {
		t.Errorf("a8 holds %v, want a knight", got)
	}
}

func TestGameSettingsLockedAfterStart(t *testing.T) {
	g := newGame(t, "", DefaultSettings())

	if !g.ToggleMode() || g.Settings().Mode != HumanVsAI {
		t.Fatal("could not toggle the mode before the start")
	}

	if !g.CycleTimeControl() || g.Snapshot().TimeControl != "10+0" {
		t.Fatalf("time control = %s, want 10+0", g.Snapshot().TimeControl)
	}

	if g.Remaining(rules.White) != 10*time.Minute {
		t.Errorf("clock shows %s after changing the time control", g.Remaining(rules.White))
	}

	g.Start(epoch)
	if g.ToggleMode() || g.CycleTimeControl() {
		t.Error("settings changed during the game")
	}

	g.Resign()
	if g.ToggleMode() || g.CycleTimeControl() {
		t.Error("settings changed after the game ended")
	}

	g.NewGame()
	if g.Status() != NotStarted {
		t.Fatalf("status = %s after NewGame", g.Status())
	}

	settings := g.Settings()
	if settings.Mode != HumanVsAI || settings.Preset != 1 {
		t.Errorf("NewGame did not keep the settings: %+v", settings)
	}

	for i := 0; i < 3; i++ {
		g.CycleTimeControl()
	}

	if got := g.Snapshot().TimeControl; got != "5+0" {
		t.Errorf("time control = %s after wrapping around, want 5+0", got)
	}
}

func TestGameStartOnlyOnce(t *testing.T) {
	g := newGame(t, "", DefaultSettings())
	g.Start(epoch)
	play(t, g, epoch, "e2e4")

	if g.Start(epoch) {
		t.Error("Start() restarted a running game")
	}

	if len(g.Position().Moves()) != 1 {
		t.Error("second Start() reset the position")
	}
}

func TestGameDiscardsStaleComputerMoves(t *testing.T) {
	settings := DefaultSettings()
	settings.Mode = HumanVsAI

	g := newGame(t, "", settings)
	g.Start(epoch)

	if g.AIToMove() {
		t.Fatal("computer to move while playing Black")
	}

	e7e5 := rules.Move{From: sq(t, "e7"), To: sq(t, "e5")}
	if g.ApplyAIMove(e7e5, g.Generation(), epoch) {
		t.Fatal("computer moved on the human's turn")
	}

	play(t, g, epoch, "e2e4")
	if !g.AIToMove() || !g.Snapshot().AIToMove {
		t.Fatal("computer not to move after e2e4")
	}

	stale := g.Generation()
	g.NewGame()
	g.Start(epoch)
	play(t, g, epoch, "e2e4")

	if g.ApplyAIMove(e7e5, stale, epoch) {
		t.Error("move from the previous game was applied")
	}

	if !g.ApplyAIMove(e7e5, g.Generation(), epoch.Add(time.Second)) {
		t.Error("current computer move was rejected")
	}

	if g.AIToMove() {
		t.Error("computer to move twice in a row")
	}

	g.Resign()
	if g.ApplyAIMove(rules.Move{From: sq(t, "d7"), To: sq(t, "d5")}, g.Generation(), epoch) {
		t.Error("computer moved after the game ended")
	}
}

// After every move of random games, the game is over exactly when one of
// the terminal conditions holds, and the first one in order decides.
func TestGameTerminationOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 6; i++ {
		g := newGame(t, "", DefaultSettings())
		oracle := g.Oracle()
		now := epoch
		g.Start(now)

		for ply := 0; ply < 200 && g.Status() == InProgress; ply++ {
			moves := oracle.LegalMoves(g.Position())
			move := moves[rng.Intn(len(moves))]

			now = now.Add(10 * time.Millisecond)
			if !g.SubmitMove(move.From, move.To, move.Promotion, now) {
				t.Fatalf("legal move %s rejected", move)
			}

			pos := g.Position()
			want := NoReason
			switch {
			case oracle.IsCheckmate(pos):
				want = Checkmate
			case oracle.IsStalemate(pos):
				want = Stalemate
			case oracle.IsInsufficientMaterial(pos):
				want = InsufficientMaterial
			case oracle.IsFiftyMoves(pos):
				want = FiftyMoveRule
			case oracle.IsRepetition(pos):
				want = Repetition
			}

			if (want != NoReason) != (g.Status() == Over) {
				t.Fatalf("status %s in %s, expected reason %d", g.Status(), pos.FEN(), want)
			}

			if g.Result().Reason != want {
				t.Fatalf("reason %d in %s, want %d", g.Result().Reason, pos.FEN(), want)
			}
		}
	}
}

func TestResultString(t *testing.T) {
	tests := []struct {
		result Result
		text   string
		score  string
	}{
		{Result{Reason: Checkmate, Winner: rules.White}, "White wins by checkmate!", "1-0"},
		{Result{Reason: Stalemate}, "Draw by stalemate!", "1/2-1/2"},
		{Result{Reason: InsufficientMaterial}, "Draw by insufficient material!", "1/2-1/2"},
		{Result{Reason: FiftyMoveRule}, "Draw by 50-move rule!", "1/2-1/2"},
		{Result{Reason: Repetition}, "Draw by repetition!", "1/2-1/2"},
		{Result{Reason: Resignation, Winner: rules.Black}, "Black wins by resignation!", "0-1"},
		{Result{Reason: Timeout, Winner: rules.Black}, "Black wins on time!", "0-1"},
		{Result{}, "", "*"},
	}

	for _, test := range tests {
		if got := test.result.String(); got != test.text {
			t.Errorf("%+v: String() = %q, want %q", test.result, got, test.text)
		}

		if got := test.result.Score(); got != test.score {
			t.Errorf("%+v: Score() = %q, want %q", test.result, got, test.score)
		}
	}
}
