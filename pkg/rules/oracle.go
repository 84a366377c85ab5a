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

package rules

import (
	"errors"
	"fmt"
)

var ErrIllegalMove = errors.New("rules: illegal move")

// Position is an opaque board state owned by an Oracle. Positions are
// never modified after creation, Oracle.Apply returns a new one.
type Position interface {
	// FEN returns the Forsyth–Edwards Notation of the position.
	FEN() string

	SideToMove() Side

	// StartFEN is the position the game history starts from, and Moves
	// are the moves played from it to reach this position.
	StartFEN() string
	Moves() []Move
}

// Oracle answers every question about the rules of chess. Nothing outside
// an Oracle implementation decides legality or game termination.
type Oracle interface {
	// NewPosition returns the configured initial position.
	NewPosition() Position

	LegalMoves(pos Position) []Move
	PieceAt(pos Position, sq Square) (Piece, bool)

	IsCapture(pos Position, move Move) bool
	GivesCheck(pos Position, move Move) bool

	// Apply plays the given move, which must be legal, and returns the
	// resulting position. It fails with ErrIllegalMove otherwise.
	Apply(pos Position, move Move) (Position, error)

	IsCheckmate(pos Position) bool
	IsStalemate(pos Position) bool
	IsInsufficientMaterial(pos Position) bool
	IsFiftyMoves(pos Position) bool
	IsRepetition(pos Position) bool
}

// GetOracle returns a new Oracle with the given backend, whose positions
// start from startFEN (the standard position if empty).
func GetOracle(name, startFEN string) (Oracle, error) {
	if startFEN == "" {
		startFEN = StartFEN
	}

	switch name {
	case "chess", "":
		return NewChessOracle(startFEN)
	case "mess":
		return NewMessOracle(startFEN)
	default:
		return nil, fmt.Errorf("rules: unknown backend %q", name)
	}
}

// Contains reports whether the given move is present in the move list.
func Contains(moves []Move, move Move) bool {
	for _, m := range moves {
		if m == move {
			return true
		}
	}

	return false
}
