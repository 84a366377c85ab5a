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

// Package game implements the state of a single chess game: the position,
// both clocks, the lifecycle and the result. A Game is not safe for
// concurrent use; it is owned by a single event loop.
package game

import (
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/kibitz/pkg/clock"
	"laptudirm.com/x/kibitz/pkg/rules"
)

type Game struct {
	oracle   rules.Oracle
	settings Settings

	status   Status
	result   Result
	position rules.Position
	clock    *clock.Clock

	// incremented whenever a game starts or is discarded, so that
	// computer moves computed for an older game can be told apart
	generation uint64
}

// New returns a game which has not been started yet.
func New(oracle rules.Oracle, settings Settings) *Game {
	if len(settings.Presets) == 0 {
		settings.Presets = clock.DefaultPresets
	}

	if settings.Preset < 0 || settings.Preset >= len(settings.Presets) {
		settings.Preset = 0
	}

	return &Game{
		oracle:   oracle,
		settings: settings,
		status:   NotStarted,
		position: oracle.NewPosition(),
		clock:    clock.New(settings.TimeControl()),
	}
}

// Start starts the game from the initial position with fresh clocks. It
// reports false if the game had already been started.
func (g *Game) Start(now time.Time) bool {
	if g.status != NotStarted {
		return false
	}

	g.position = g.oracle.NewPosition()
	g.result = Result{}
	g.clock.Reset(g.settings.TimeControl())
	g.clock.SwitchActive(g.position.SideToMove(), now)

	g.status = InProgress
	g.generation++

	logrus.Infof("game: started %s, %s", g.settings.Mode, g.settings.TimeControl())
	return true
}

// SubmitMove plays the move from-to for the side to move. A pawn reaching
// the last rank without a promotion piece is promoted to a queen. It
// reports whether the move was legal and played; an illegal move changes
// nothing.
func (g *Game) SubmitMove(from, to rules.Square, promotion rules.PieceType, now time.Time) bool {
	if g.status != InProgress {
		return false
	}

	// the mover's time may have run out since the last tick
	if g.Tick(now); g.status != InProgress {
		return false
	}

	move := rules.Move{From: from, To: to, Promotion: promotion}
	if promotion == rules.NoPieceType {
		piece, ok := g.oracle.PieceAt(g.position, from)
		if ok && piece.Type == rules.Pawn && to.Rank() == rules.PromotionRank(piece.Side) {
			move.Promotion = rules.Queen
		}
	}

	if !rules.Contains(g.oracle.LegalMoves(g.position), move) {
		logrus.Debugf("game: rejected move %s", move)
		return false
	}

	next, err := g.oracle.Apply(g.position, move)
	if err != nil {
		logrus.Debugf("game: rejected move %s: %v", move, err)
		return false
	}

	g.position = next
	g.clock.SwitchActive(next.SideToMove(), now)

	logrus.Debugf("game: played %s", move)
	g.evaluate()
	return true
}

// evaluate ends the game if the current position is terminal. The checks
// are made in a fixed order, and the first one which holds decides the
// result.
func (g *Game) evaluate() {
	mover := g.position.SideToMove().Other()

	switch {
	case g.oracle.IsCheckmate(g.position):
		g.finish(Result{Reason: Checkmate, Winner: mover})
	case g.oracle.IsStalemate(g.position):
		g.finish(Result{Reason: Stalemate})
	case g.oracle.IsInsufficientMaterial(g.position):
		g.finish(Result{Reason: InsufficientMaterial})
	case g.oracle.IsFiftyMoves(g.position):
		g.finish(Result{Reason: FiftyMoveRule})
	case g.oracle.IsRepetition(g.position):
		g.finish(Result{Reason: Repetition})
	}
}

func (g *Game) finish(result Result) {
	g.status = Over
	g.result = result
	g.clock.Stop()

	logrus.Infof("game: %s (%s)", result, result.Score())
}

// Resign ends the game with a loss for the side to move. It reports false
// if the game was not in progress.
func (g *Game) Resign() bool {
	if g.status != InProgress {
		return false
	}

	g.finish(Result{Reason: Resignation, Winner: g.position.SideToMove().Other()})
	return true
}

// Tick charges the time elapsed until now to the side to move, and ends
// the game if its time has run out.
func (g *Game) Tick(now time.Time) {
	if g.status != InProgress {
		return
	}

	if g.clock.Tick(now) {
		side, _ := g.clock.Active()
		g.finish(Result{Reason: Timeout, Winner: side.Other()})
	}
}

// NewGame discards the current game, keeping the mode and time control.
func (g *Game) NewGame() {
	g.status = NotStarted
	g.result = Result{}
	g.position = g.oracle.NewPosition()
	g.clock.Reset(g.settings.TimeControl())
	g.generation++

	logrus.Info("game: new game ready")
}

// ToggleMode switches between playing against a human and the computer.
// The mode can only be changed before the game starts.
func (g *Game) ToggleMode() bool {
	if g.status != NotStarted {
		return false
	}

	if g.settings.Mode == HumanVsHuman {
		g.settings.Mode = HumanVsAI
	} else {
		g.settings.Mode = HumanVsHuman
	}

	logrus.Infof("game: mode changed to %s", g.settings.Mode)
	return true
}

// CycleTimeControl selects the next time control preset. The time control
// can only be changed before the game starts.
func (g *Game) CycleTimeControl() bool {
	if g.status != NotStarted {
		return false
	}

	g.settings.Preset = (g.settings.Preset + 1) % len(g.settings.Presets)
	g.clock.Reset(g.settings.TimeControl())

	logrus.Infof("game: time control changed to %s", g.settings.TimeControl())
	return true
}

// AIToMove reports whether the computer should move now.
func (g *Game) AIToMove() bool {
	return g.status == InProgress &&
		g.settings.Mode == HumanVsAI &&
		g.position.SideToMove() == g.settings.AISide
}

// ApplyAIMove plays a move chosen by the computer for the given generation.
// Moves for an older game, or arriving when it is not the computer's turn,
// are discarded. Legality is checked the same way as for human moves.
func (g *Game) ApplyAIMove(move rules.Move, generation uint64, now time.Time) bool {
	if generation != g.generation || !g.AIToMove() {
		logrus.Debugf("game: discarding stale computer move %s", move)
		return false
	}

	return g.SubmitMove(move.From, move.To, move.Promotion, now)
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) Result() Result {
	return g.result
}

// Position returns the current position.
func (g *Game) Position() rules.Position {
	return g.position
}

func (g *Game) Oracle() rules.Oracle {
	return g.oracle
}

// Generation identifies the current game.
func (g *Game) Generation() uint64 {
	return g.generation
}

func (g *Game) Settings() Settings {
	return g.settings
}

// Remaining returns the time left on the given side's clock as of the
// last update.
func (g *Game) Remaining(side rules.Side) time.Duration {
	return g.clock.Remaining(side)
}
