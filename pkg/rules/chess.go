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
	"fmt"

	"github.com/notnil/chess"
)

// ChessOracle is an Oracle backed by github.com/notnil/chess.
type ChessOracle struct {
	startFEN string
}

// NewChessOracle returns a ChessOracle whose games start from the given
// position.
func NewChessOracle(startFEN string) (*ChessOracle, error) {
	if _, err := newChessGame(startFEN); err != nil {
		return nil, fmt.Errorf("rules: invalid start position: %w", err)
	}

	return &ChessOracle{startFEN: startFEN}, nil
}

func newChessGame(fenstr string) (*chess.Game, error) {
	fen, err := chess.FEN(fenstr)
	if err != nil {
		return nil, err
	}

	return chess.NewGame(fen, chess.UseNotation(chess.UCINotation{})), nil
}

// chessPosition keeps the whole game instead of a bare *chess.Position
// since repetition and the fifty-move counter depend on the history.
type chessPosition struct {
	start string
	moves []Move
	game  *chess.Game
}

func (pos *chessPosition) FEN() string {
	return pos.game.Position().String()
}

func (pos *chessPosition) SideToMove() Side {
	return fromChessColor(pos.game.Position().Turn())
}

func (pos *chessPosition) StartFEN() string {
	return pos.start
}

func (pos *chessPosition) Moves() []Move {
	moves := make([]Move, len(pos.moves))
	copy(moves, pos.moves)
	return moves
}

func (oracle *ChessOracle) position(pos Position) *chessPosition {
	p, ok := pos.(*chessPosition)
	if !ok {
		panic(fmt.Sprintf("rules: position of type %T passed to chess oracle", pos))
	}

	return p
}

func (oracle *ChessOracle) NewPosition() Position {
	game, err := newChessGame(oracle.startFEN)
	if err != nil {
		// the start position is validated by NewChessOracle
		panic(err)
	}

	return &chessPosition{start: oracle.startFEN, game: game}
}

func (oracle *ChessOracle) LegalMoves(pos Position) []Move {
	valid := oracle.position(pos).game.ValidMoves()

	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, fromChessMove(m))
	}

	return moves
}

func (oracle *ChessOracle) PieceAt(pos Position, sq Square) (Piece, bool) {
	if sq >= NoSquare {
		return Piece{}, false
	}

	p := oracle.position(pos).game.Position().Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return Piece{}, false
	}

	return Piece{
		Type: fromChessPieceType(p.Type()),
		Side: fromChessColor(p.Color()),
	}, true
}

// find returns the library's version of the given move, which carries
// the capture and check tags, or nil if the move is illegal.
func (oracle *ChessOracle) find(pos *chessPosition, move Move) *chess.Move {
	for _, m := range pos.game.ValidMoves() {
		if fromChessMove(m) == move {
			return m
		}
	}

	return nil
}

func (oracle *ChessOracle) IsCapture(pos Position, move Move) bool {
	m := oracle.find(oracle.position(pos), move)
	return m != nil && (m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant))
}

func (oracle *ChessOracle) GivesCheck(pos Position, move Move) bool {
	m := oracle.find(oracle.position(pos), move)
	return m != nil && m.HasTag(chess.Check)
}

func (oracle *ChessOracle) Apply(pos Position, move Move) (Position, error) {
	p := oracle.position(pos)

	m := oracle.find(p, move)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}

	// the clone shares positions, which are never modified once played
	game := p.game.Clone()
	if err := game.Move(m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}

	moves := make([]Move, len(p.moves), len(p.moves)+1)
	copy(moves, p.moves)

	return &chessPosition{
		start: p.start,
		moves: append(moves, move),
		game:  game,
	}, nil
}

func (oracle *ChessOracle) IsCheckmate(pos Position) bool {
	return oracle.position(pos).game.Position().Status() == chess.Checkmate
}

func (oracle *ChessOracle) IsStalemate(pos Position) bool {
	return oracle.position(pos).game.Position().Status() == chess.Stalemate
}

func (oracle *ChessOracle) IsInsufficientMaterial(pos Position) bool {
	return oracle.position(pos).game.Method() == chess.InsufficientMaterial
}

func (oracle *ChessOracle) IsFiftyMoves(pos Position) bool {
	game := oracle.position(pos).game
	return game.Method() == chess.SeventyFiveMoveRule ||
		hasMethod(game.EligibleDraws(), chess.FiftyMoveRule)
}

func (oracle *ChessOracle) IsRepetition(pos Position) bool {
	game := oracle.position(pos).game
	return game.Method() == chess.FivefoldRepetition ||
		hasMethod(game.EligibleDraws(), chess.ThreefoldRepetition)
}

func hasMethod(methods []chess.Method, method chess.Method) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}

	return false
}

func fromChessMove(m *chess.Move) Move {
	return Move{
		From:      Square(m.S1()),
		To:        Square(m.S2()),
		Promotion: fromChessPieceType(m.Promo()),
	}
}

func fromChessColor(c chess.Color) Side {
	if c == chess.Black {
		return Black
	}

	return White
}

func fromChessPieceType(pt chess.PieceType) PieceType {
	switch pt {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return NoPieceType
	}
}
