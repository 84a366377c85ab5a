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
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Side represents one of the two players.
type Side uint8

const (
	White Side = iota
	Black
)

// SideN is the number of sides.
const SideN = 2

// Other returns the opponent of the given side.
func (side Side) Other() Side {
	return side ^ 1
}

func (side Side) String() string {
	switch side {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Unknown"
	}
}

// ParseSide parses a side name, either "white" or "black".
func ParseSide(str string) (Side, error) {
	switch strings.ToLower(str) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("rules: invalid side %q", str)
	}
}

// Square represents a square on the chess board, a1 being 0 and h8 63.
type Square uint8

// NoSquare is the zero value for an absent square.
const NoSquare Square = 64

// NewSquare returns the square on the given file and rank, both 0-indexed.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (sq Square) File() int {
	return int(sq) % 8
}

func (sq Square) Rank() int {
	return int(sq) / 8
}

func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}

	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

var ErrInvalidSquare = errors.New("rules: invalid square")

// ParseSquare parses a square in algebraic notation, like "e4".
func ParseSquare(str string) (Square, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if len(str) != 2 {
		return NoSquare, ErrInvalidSquare
	}

	file, rank := int(str[0]-'a'), int(str[1]-'1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, ErrInvalidSquare
	}

	return NewSquare(file, rank), nil
}

// PieceType represents the type of a chess piece, without its color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const pieceLetters = " pnbrqk"

func (pt PieceType) String() string {
	if pt > King {
		return "?"
	}

	return string(pieceLetters[pt])
}

// Piece is a piece of a specific type belonging to a side.
type Piece struct {
	Type PieceType
	Side Side
}

// String returns the FEN letter of the piece.
func (p Piece) String() string {
	if p.Side == White {
		return strings.ToUpper(p.Type.String())
	}

	return p.Type.String()
}

// Move is a single chess move in from-to form, with an optional promotion.
// A Move is only meaningful relative to a Position and an Oracle which
// decides whether it is legal.
type Move struct {
	From, To  Square
	Promotion PieceType
}

// NullMove is the zero value returned alongside errors.
var NullMove = Move{From: NoSquare, To: NoSquare}

// String returns the UCI long algebraic notation of the move.
func (move Move) String() string {
	if move.From >= NoSquare || move.To >= NoSquare {
		return "0000"
	}

	str := move.From.String() + move.To.String()
	if move.Promotion != NoPieceType {
		str += move.Promotion.String()
	}

	return str
}

var ErrInvalidMove = errors.New("rules: invalid move string")

// ParseMove parses a move in UCI long algebraic notation, like "e2e4" or "e7e8q".
func ParseMove(str string) (Move, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if len(str) != 4 && len(str) != 5 {
		return NullMove, ErrInvalidMove
	}

	from, err := ParseSquare(str[0:2])
	if err != nil {
		return NullMove, ErrInvalidMove
	}

	to, err := ParseSquare(str[2:4])
	if err != nil {
		return NullMove, ErrInvalidMove
	}

	move := Move{From: from, To: to}
	if len(str) == 5 {
		switch str[4] {
		case 'n':
			move.Promotion = Knight
		case 'b':
			move.Promotion = Bishop
		case 'r':
			move.Promotion = Rook
		case 'q':
			move.Promotion = Queen
		default:
			return NullMove, ErrInvalidMove
		}
	}

	return move, nil
}

// PromotionRank returns the farthest rank for the given side's pawns.
func PromotionRank(side Side) int {
	if side == White {
		return 7
	}

	return 0
}
