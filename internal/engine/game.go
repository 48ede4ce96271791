package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPiece      = errors.New("unknown piece")
	ErrMoveNotGenerated  = errors.New("move was not generated for this piece")
	ErrDuplicateCapture  = errors.New("piece already captured")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// CaptureRecord is the append-only, ordered log of captured piece ids.
type CaptureRecord struct {
	ids  []string
	seen map[string]struct{}
}

func (r *CaptureRecord) append(id string) error {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCapture, id)
	}
	r.seen[id] = struct{}{}
	r.ids = append(r.ids, id)
	return nil
}

func (r *CaptureRecord) Contains(id string) bool {
	_, ok := r.seen[id]
	return ok
}

func (r *CaptureRecord) Len() int { return len(r.ids) }

// IDs returns a copy in capture order.
func (r *CaptureRecord) IDs() []string { return append([]string(nil), r.ids...) }

// Game is the whole entity store: pieces, capture record and the side to move.
// It is not safe for concurrent use; callers serialise access.
type Game struct {
	pieces   []*Piece
	byID     map[string]*Piece
	captures CaptureRecord
	active   Color
}

func newGame(pieces []Piece, active Color) *Game {
	g := &Game{
		pieces: make([]*Piece, 0, len(pieces)),
		byID:   make(map[string]*Piece, len(pieces)),
		active: active,
	}
	for i := range pieces {
		p := pieces[i]
		g.pieces = append(g.pieces, &p)
		g.byID[p.ID] = &p
	}
	return g
}

// Active returns whose turn it is.
func (g *Game) Active() Color { return g.active }

// Captures returns the capture record ids in order.
func (g *Game) Captures() []string { return g.captures.IDs() }

// IsCaptured reports whether the piece id is in the capture record.
func (g *Game) IsCaptured(id string) bool { return g.captures.Contains(id) }

// Pieces returns copies of every piece, captured ones included, in store order.
func (g *Game) Pieces() []Piece {
	out := make([]Piece, 0, len(g.pieces))
	for _, p := range g.pieces {
		out = append(out, *p)
	}
	return out
}

// LivePieces returns copies of pieces not in the capture record.
func (g *Game) LivePieces() []Piece {
	out := make([]Piece, 0, len(g.pieces))
	for _, p := range g.pieces {
		if g.captures.Contains(p.ID) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Piece looks a piece up by id.
func (g *Game) Piece(id string) (Piece, bool) {
	p, ok := g.byID[id]
	if !ok {
		return Piece{}, false
	}
	return *p, true
}

// IsOccupied reports whether a live piece sits at (row, col).
func (g *Game) IsOccupied(row, col int) bool {
	_, ok := g.PieceAt(row, col)
	return ok
}

// PieceAt returns the live piece at (row, col). Out of range cells hold nothing.
func (g *Game) PieceAt(row, col int) (Piece, bool) {
	if p := g.pieceAt(row, col); p != nil {
		return *p, true
	}
	return Piece{}, false
}

func (g *Game) pieceAt(row, col int) *Piece {
	if !InBounds(row, col) {
		return nil
	}
	for _, p := range g.pieces {
		if p.Position.Row == row && p.Position.Col == col && !g.captures.Contains(p.ID) {
			return p
		}
	}
	return nil
}

// CapturedBy returns the pieces taken by side, in capture order.
func (g *Game) CapturedBy(side Color) []Piece {
	var out []Piece
	for _, id := range g.captures.ids {
		p, ok := g.byID[id]
		if !ok || p.Color == side {
			continue
		}
		out = append(out, *p)
	}
	return out
}
