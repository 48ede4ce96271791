// Package notation maps engine positions onto standard chess notation.
// Row 0 is rank 8 and column 0 is file a.
package notation

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/engine"
)

var pieceTypes = map[engine.Kind]nchess.PieceType{
	engine.Pawn:   nchess.Pawn,
	engine.Rook:   nchess.Rook,
	engine.Knight: nchess.Knight,
	engine.Bishop: nchess.Bishop,
	engine.Queen:  nchess.Queen,
	engine.King:   nchess.King,
}

// Square converts an in-bounds position.
func Square(p engine.Position) nchess.Square {
	return nchess.NewSquare(nchess.File(p.Col), nchess.Rank(7-p.Row))
}

// SquareName returns "e2" style names, or "??" off the board.
func SquareName(p engine.Position) string {
	if !engine.InBounds(p.Row, p.Col) {
		return "??"
	}
	return Square(p).String()
}

// Piece converts an engine piece.
func Piece(p engine.Piece) nchess.Piece {
	c := nchess.White
	if p.Color == engine.Black {
		c = nchess.Black
	}
	return nchess.NewPiece(pieceTypes[p.Kind], c)
}

// Board builds a board of the live pieces.
func Board(g *engine.Game) *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece, 32)
	for _, p := range g.LivePieces() {
		m[Square(p.Position)] = Piece(p)
	}
	return nchess.NewBoard(m)
}

// FEN describes the game. Castling and en-passant fields are always empty
// because the engine tracks neither.
func FEN(g *engine.Game) string {
	side := "w"
	if g.Active() == engine.Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s - - 0 1", Board(g).String(), side)
}

// UCI renders a move as "e2e4".
func UCI(from engine.Position, mv engine.Move) string {
	return SquareName(from) + SquareName(mv.Dest())
}

// Describe renders an applied move for logs: "wp4 e2-e4", "wn1 b1xc3 (bp2)".
func Describe(o engine.Outcome) string {
	sep := "-"
	suffix := ""
	if c, ok := o.Move.(engine.Capture); ok {
		sep = "x"
		suffix = " (" + c.Target.ID + ")"
	}
	return fmt.Sprintf("%s %s%s%s%s", o.Piece.ID, SquareName(o.From), sep, SquareName(o.Move.Dest()), suffix)
}
