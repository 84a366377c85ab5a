package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

const fakeEngineEnv = "KIBITZ_FAKE_ENGINE"

// The test binary doubles as a UCI engine when fakeEngineEnv is set. Its
// value selects how the engine answers a search.
func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeEngineEnv); mode != "" {
		runFakeEngine(mode)
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func runFakeEngine(mode string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "uci":
			fmt.Println("id name fake")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "go":
			switch mode {
			case "crash":
				os.Exit(3)
			case "silent":
			case "illegal":
				fmt.Println("bestmove e2e5")
			default:
				fmt.Println("info depth 1 score cp 30")
				fmt.Println("bestmove e2e4")
			}
		case "stop":
			fmt.Println("bestmove e2e4")
		case "quit":
			return
		}
	}
}

func fakePlayer(t *testing.T, mode string) *Player {
	t.Helper()
	t.Setenv(fakeEngineEnv, mode)

	oracle, _ := mustPosition(t)
	player := NewPlayer(EngineConfig{
		Name:   "fake",
		Cmd:    os.Args[0],
		Arg:    "-test.run=^$",
		Margin: 500 * time.Millisecond,
	}, oracle)

	t.Cleanup(player.Close)
	return player
}

func TestPlayerStartsLazily(t *testing.T) {
	player := fakePlayer(t, "ok")
	if player.Running() {
		t.Fatal("engine started before the first request")
	}

	_, pos := mustPosition(t)
	move, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	if move.String() != "e2e4" {
		t.Errorf("RequestMove() = %s, want e2e4", move)
	}

	if !player.Running() {
		t.Error("engine not running after a request")
	}

	player.Close()
	if player.Running() {
		t.Error("engine running after Close")
	}

	// closing twice is fine
	player.Close()
}

func TestPlayerRestartsAfterCrash(t *testing.T) {
	player := fakePlayer(t, "crash")
	_, pos := mustPosition(t)

	if _, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RequestMove() error = %v, want %v", err, ErrUnavailable)
	}

	if player.Running() {
		t.Fatal("crashed engine still marked as running")
	}

	// the next process inherits the new environment
	t.Setenv(fakeEngineEnv, "ok")
	if _, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond); err != nil {
		t.Fatalf("RequestMove() after restart: %v", err)
	}
}

func TestPlayerTimeout(t *testing.T) {
	player := fakePlayer(t, "silent")
	_, pos := mustPosition(t)

	start := time.Now()
	if _, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RequestMove() error = %v, want %v", err, ErrUnavailable)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timed out request took %s", elapsed)
	}

	if player.Running() {
		t.Error("hung engine was not shut down")
	}
}

func TestPlayerCloseAfterCancel(t *testing.T) {
	player := fakePlayer(t, "silent")
	_, pos := mustPosition(t)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := player.RequestMove(ctx, pos, time.Minute)
		errs <- err
	}()

	// let the engine start and begin its search
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	cancel()
	player.Close()

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Close after cancelling took %s", elapsed)
	}

	if err := <-errs; !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.Canceled) {
		t.Errorf("RequestMove() error = %v, want a cancelled %v", err, ErrUnavailable)
	}

	if player.Running() {
		t.Error("engine running after Close")
	}
}

func TestPlayerIllegalReply(t *testing.T) {
	player := fakePlayer(t, "illegal")
	_, pos := mustPosition(t)

	if _, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RequestMove() error = %v, want %v", err, ErrUnavailable)
	}
}

func TestPlayerUnavailable(t *testing.T) {
	oracle, pos := mustPosition(t)

	for _, cmd := range []string{"", "/nonexistent/kibitz-engine"} {
		player := NewPlayer(EngineConfig{Cmd: cmd}, oracle)

		if _, err := player.RequestMove(context.Background(), pos, 10*time.Millisecond); !errors.Is(err, ErrUnavailable) {
			t.Errorf("cmd %q: RequestMove() error = %v, want %v", cmd, err, ErrUnavailable)
		}

		player.Close()
	}
}
