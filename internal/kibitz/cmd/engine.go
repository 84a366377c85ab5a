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
	"context"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/kibitz/pkg/engine"
)

const SPIN = 14

func Engine() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Manage the engine kibitz plays against",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(engineCheck())
	return cmd
}

func engineCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the configured engine works",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`check starts the configured engine, performs the UCI
			handshake and asks it for a move from the starting
			position, the same way a game against the computer does.

			If the engine does not work, games against the computer
			are still playable, but the computer picks its moves
			with a simple fallback instead.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			oracle, err := conf.Oracle()
			if err != nil {
				return err
			}

			moveTime := conf.Engine.MoveTime
			if moveTime <= 0 {
				moveTime = engine.DefaultMoveTime
			}

			s := spinner.New(spinner.CharSets[SPIN], 100*time.Millisecond)
			s.Suffix = " checking " + conf.Engine.Cmd
			s.Start() // Start the ~working~ spinner.

			player := engine.NewPlayer(conf.Engine, oracle)
			defer player.Close()

			start := time.Now()
			move, err := player.RequestMove(context.Background(), oracle.NewPosition(), moveTime)
			s.Stop() // Stop the ~working~ spinner.

			if err != nil {
				return fmt.Errorf("%s is not usable: %w", conf.Engine.Cmd, err)
			}

			logrus.Debugf("engine: answered in %s", time.Since(start))
			fmt.Printf("%s %s plays %s\n", color.GreenString("ok:"), conf.Engine.Name, move)
			return nil
		},
	}

	cmd.Flags().String("engine", "", "Engine command to check instead of the configured one")
	cmd.Flags().String("rules", "", "Rules backend, chess or mess")
	return cmd
}
