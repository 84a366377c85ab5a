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

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
	"laptudirm.com/x/mess/pkg/board/piece"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

// MessOracle is an Oracle backed by the mess chess engine's board.
type MessOracle struct {
	startFEN string
}

var errFENFields = errors.New("fen: expected 6 fields")

// NewMessOracle returns a MessOracle whose games start from the given
// position.
func NewMessOracle(startFEN string) (*MessOracle, error) {
	if len(strings.Fields(startFEN)) != 6 {
		return nil, fmt.Errorf("rules: invalid start position: %w", errFENFields)
	}

	if _, err := parsePlacement(startFEN); err != nil {
		return nil, fmt.Errorf("rules: invalid start position: %w", err)
	}

	return &MessOracle{startFEN: startFEN}, nil
}

type messPosition struct {
	start string
	moves []Move
	board *board.Board

	// repetition keys of every position since the start, this one last
	keys []string

	// generated once per position
	legal   []move.Move
	squares [64]Piece
}

// newMessPosition wraps a board reached by playing moves from start. The
// board is rebuilt from a FEN string each time, so it carries no history
// and keys stands in for it.
func newMessPosition(start string, moves []Move, b *board.Board, keys []string) (*messPosition, error) {
	pos := &messPosition{
		start: start,
		moves: moves,
		board: b,
		legal: b.GenerateMoves(false),
	}

	fenstr := pos.FEN()
	squares, err := parsePlacement(fenstr)
	if err != nil {
		return nil, err
	}

	pos.squares = squares
	pos.keys = append(keys, repetitionKey(fenstr))
	return pos, nil
}

func newMessBoard(fenstr string) *board.Board {
	return board.New(board.FEN(fen.FromString(fenstr)))
}

// play returns a new board with the given move made on a copy of pos.
func (pos *messPosition) play(m Move) (*board.Board, bool) {
	b := newMessBoard(pos.FEN())

	found, ok := findMessMove(b.GenerateMoves(false), m)
	if !ok {
		return nil, false
	}

	b.MakeMove(found)
	return b, true
}

// repetitionKey drops the move counters from a FEN string, leaving what
// makes two positions the same for repetition.
func repetitionKey(fenstr string) string {
	fields := strings.Fields(fenstr)
	if len(fields) > 4 {
		fields = fields[:4]
	}

	return strings.Join(fields, " ")
}

func findMessMove(moves []move.Move, m Move) (move.Move, bool) {
	for _, mov := range moves {
		if strings.EqualFold(mov.String(), m.String()) {
			return mov, true
		}
	}

	var none move.Move
	return none, false
}

func (pos *messPosition) FEN() string {
	fields := [6]string(pos.board.FEN())
	return strings.Join(fields[:], " ")
}

func (pos *messPosition) SideToMove() Side {
	if pos.board.SideToMove == piece.Black {
		return Black
	}

	return White
}

func (pos *messPosition) StartFEN() string {
	return pos.start
}

func (pos *messPosition) Moves() []Move {
	moves := make([]Move, len(pos.moves))
	copy(moves, pos.moves)
	return moves
}

func (oracle *MessOracle) position(pos Position) *messPosition {
	p, ok := pos.(*messPosition)
	if !ok {
		panic(fmt.Sprintf("rules: position of type %T passed to mess oracle", pos))
	}

	return p
}

func (oracle *MessOracle) NewPosition() Position {
	pos, err := newMessPosition(oracle.startFEN, nil, newMessBoard(oracle.startFEN), nil)
	if err != nil {
		panic(err)
	}

	return pos
}

func (oracle *MessOracle) LegalMoves(pos Position) []Move {
	p := oracle.position(pos)

	moves := make([]Move, 0, len(p.legal))
	for _, mov := range p.legal {
		m, err := ParseMove(mov.String())
		if err != nil {
			continue
		}

		moves = append(moves, m)
	}

	return moves
}

func (oracle *MessOracle) PieceAt(pos Position, sq Square) (Piece, bool) {
	if sq >= NoSquare {
		return Piece{}, false
	}

	p := oracle.position(pos).squares[sq]
	return p, p.Type != NoPieceType
}

func (oracle *MessOracle) IsCapture(pos Position, m Move) bool {
	p := oracle.position(pos)
	if _, ok := findMessMove(p.legal, m); !ok {
		return false
	}

	if _, occupied := oracle.PieceAt(pos, m.To); occupied {
		return true
	}

	// en passant: a pawn moving onto the en passant target square
	mover, _ := oracle.PieceAt(pos, m.From)
	fields := strings.Fields(p.FEN())
	return mover.Type == Pawn && len(fields) > 3 && fields[3] == m.To.String()
}

func (oracle *MessOracle) GivesCheck(pos Position, m Move) bool {
	p := oracle.position(pos)
	if _, ok := findMessMove(p.legal, m); !ok {
		return false
	}

	b, ok := p.play(m)
	return ok && b.IsInCheck(b.SideToMove)
}

func (oracle *MessOracle) Apply(pos Position, m Move) (Position, error) {
	p := oracle.position(pos)
	if _, ok := findMessMove(p.legal, m); !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	b, ok := p.play(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	moves := make([]Move, len(p.moves), len(p.moves)+1)
	copy(moves, p.moves)

	keys := make([]string, len(p.keys), len(p.keys)+1)
	copy(keys, p.keys)

	return newMessPosition(p.start, append(moves, m), b, keys)
}

func (oracle *MessOracle) IsCheckmate(pos Position) bool {
	p := oracle.position(pos)
	return len(p.legal) == 0 && p.board.IsInCheck(p.board.SideToMove)
}

func (oracle *MessOracle) IsStalemate(pos Position) bool {
	p := oracle.position(pos)
	return len(p.legal) == 0 && !p.board.IsInCheck(p.board.SideToMove)
}

func (oracle *MessOracle) IsInsufficientMaterial(pos Position) bool {
	return oracle.position(pos).board.IsInsufficientMaterial()
}

func (oracle *MessOracle) IsFiftyMoves(pos Position) bool {
	return oracle.position(pos).board.DrawClock >= 100
}

func (oracle *MessOracle) IsRepetition(pos Position) bool {
	p := oracle.position(pos)
	current := p.keys[len(p.keys)-1]

	count := 0
	for _, key := range p.keys {
		if key == current {
			count++
		}
	}

	return count >= 3
}

// parsePlacement reads the piece placement field of a FEN string.
func parsePlacement(fenstr string) ([64]Piece, error) {
	var squares [64]Piece

	fields := strings.Fields(fenstr)
	if len(fields) == 0 {
		return squares, errFENFields
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return squares, fmt.Errorf("fen: expected 8 ranks, found %d", len(ranks))
	}

	for i, rank := range ranks {
		r, file := 7-i, 0
		for _, c := range rank {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			pt := PieceType(strings.IndexRune(pieceLetters, toLower(c)))
			if pt == NoPieceType || pt > King || file > 7 {
				return squares, fmt.Errorf("fen: invalid piece placement %q", rank)
			}

			side := Black
			if c >= 'A' && c <= 'Z' {
				side = White
			}

			squares[NewSquare(file, r)] = Piece{Type: pt, Side: side}
			file++
		}

		if file != 8 {
			return squares, fmt.Errorf("fen: invalid rank length %q", rank)
		}
	}

	return squares, nil
}

func toLower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}

	return c
}
