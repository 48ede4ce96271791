package engine

import "fmt"

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool { return c == White || c == Black }

// Kind is the piece type.
type Kind string

const (
	Pawn   Kind = "pawn"
	Rook   Kind = "rook"
	Knight Kind = "knight"
	Bishop Kind = "bishop"
	Queen  Kind = "queen"
	King   Kind = "king"
)

func (k Kind) Valid() bool {
	switch k {
	case Pawn, Rook, Knight, Bishop, Queen, King:
		return true
	}
	return false
}

const boardSize = 8

// Position is a board cell. Row 0 is black's back rank, row 7 is white's.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

func (p Position) step(d Offset) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// InBounds reports whether both coordinates lie in [0,7].
func InBounds(row, col int) bool {
	return row >= 0 && row < boardSize && col >= 0 && col < boardSize
}

// Piece is one chess piece. FirstMove only matters for pawns.
type Piece struct {
	ID        string
	Kind      Kind
	Position  Position
	Color     Color
	FirstMove bool
}

// PieceRef points at a piece by its stable id.
type PieceRef struct {
	ID string
}

// MoveKind discriminates the Move variants.
type MoveKind string

const (
	MoveAdvance MoveKind = "move"
	MoveCapture MoveKind = "take"
)

// Move is either an Advance or a Capture.
type Move interface {
	Kind() MoveKind
	Dest() Position
	isMove()
}

// Advance moves onto an empty cell.
type Advance struct {
	To Position
}

func (Advance) Kind() MoveKind   { return MoveAdvance }
func (a Advance) Dest() Position { return a.To }
func (Advance) isMove()          {}
func (a Advance) String() string { return "move " + a.To.String() }

// Capture moves onto a cell held by an opposing piece, removing it.
type Capture struct {
	To     Position
	Target PieceRef
}

func (Capture) Kind() MoveKind   { return MoveCapture }
func (c Capture) Dest() Position { return c.To }
func (Capture) isMove()          {}
func (c Capture) String() string { return "take " + c.To.String() + " " + c.Target.ID }

// SameMove reports whether a and b are the same variant with the same payload.
func SameMove(a, b Move) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Advance:
		bv, ok := b.(Advance)
		return ok && av == bv
	case Capture:
		bv, ok := b.(Capture)
		return ok && av == bv
	}
	return false
}
