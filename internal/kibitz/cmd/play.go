// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/kibitz/pkg/engine"
	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
	"laptudirm.com/x/kibitz/pkg/session"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game of chess in the terminal",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts an interactive game of chess. Commands are
			read from standard input, one per line:

			  start        start the game
			  resign       resign for the side to move
			  new          discard the game and set up a new one
			  mode         switch between Human vs Human and Human vs AI
			  tc           cycle through the time controls
			  e2           click on a square: select a piece, then its target
			  e2e4, e7e8n  play a move in UCI notation
			  board        print the board again
			  quit         leave kibitz

			The mode and time control can only be changed before the
			game starts. In Human vs AI mode the computer plays the
			configured side using the configured UCI engine, or a
			simple fallback when the engine is not available.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			oracle, err := conf.Oracle()
			if err != nil {
				return err
			}

			settings, err := conf.Settings()
			if err != nil {
				return err
			}

			seed := conf.Seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			term := newTerminal(os.Stdout)
			player := engine.NewPlayer(conf.Engine, oracle)

			s := session.New(
				game.New(oracle, settings),
				player,
				engine.NewFallback(oracle, seed),
				session.Options{
					Tick:     conf.Tick,
					AIDelay:  conf.AIDelay,
					MoveTime: conf.Engine.MoveTime,
					OnUpdate: term.update,
				},
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			events := make(chan session.Event)
			go readCommands(ctx, os.Stdin, events, term)

			if err := s.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			logrus.Debug("play: session ended")
			return nil
		},
	}

	cmd.Flags().String("mode", "", "Game mode, human or ai")
	cmd.Flags().Int("tc", 0, "Index of the initial time control")
	cmd.Flags().String("engine", "", "UCI engine command for the computer")
	cmd.Flags().String("rules", "", "Rules backend, chess or mess")

	return cmd
}

var errUnknownCommand = errors.New("unknown command")

// parseCommand parses a line of input into a session event.
func parseCommand(line string) (session.Event, error) {
	word := strings.ToLower(strings.TrimSpace(line))

	switch word {
	case "start":
		return session.Event{Kind: session.StartClicked}, nil
	case "resign":
		return session.Event{Kind: session.ResignClicked}, nil
	case "new":
		return session.Event{Kind: session.NewGameClicked}, nil
	case "mode":
		return session.Event{Kind: session.ModeToggled}, nil
	case "tc":
		return session.Event{Kind: session.TimeControlCycled}, nil
	case "quit", "exit":
		return session.Event{Kind: session.Quit}, nil
	}

	if sq, err := rules.ParseSquare(word); err == nil {
		return session.Event{Kind: session.SquareClicked, Square: sq}, nil
	}

	if move, err := rules.ParseMove(word); err == nil {
		return session.Event{Kind: session.MoveEntered, Move: move}, nil
	}

	return session.Event{}, fmt.Errorf("%w %q, type help for a list", errUnknownCommand, word)
}

// readCommands forwards the commands read from in to the session until
// the input ends or a quit command is read.
func readCommands(ctx context.Context, in io.Reader, events chan<- session.Event, term *terminal) {
	defer close(events)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "":
			continue
		case "board":
			term.redraw()
			continue
		case "help", "?":
			term.help()
			continue
		}

		event, err := parseCommand(scanner.Text())
		if err != nil {
			term.warn(err)
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return
		}

		if event.Kind == session.Quit {
			return
		}
	}
}
