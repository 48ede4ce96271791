package engine

import "fmt"

// Outcome describes a move that was applied.
type Outcome struct {
	Piece    Piece // after the move
	From     Position
	Move     Move
	Captured *Piece
}

// Apply moves the piece with the given id. The move must be one that
// GenerateMoves currently returns for that piece; anything else is rejected
// with ErrMoveNotGenerated and the game is left untouched.
func (g *Game) Apply(id string, mv Move) (Outcome, error) {
	p, ok := g.byID[id]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownPiece, id)
	}
	if !containsMove(g.GenerateMoves(id), mv) {
		return Outcome{}, fmt.Errorf("%w: %s %v", ErrMoveNotGenerated, id, mv)
	}

	out := Outcome{From: p.Position, Move: mv}
	if c, ok := mv.(Capture); ok {
		if err := g.captures.append(c.Target.ID); err != nil {
			return Outcome{}, err
		}
		if target, ok := g.byID[c.Target.ID]; ok {
			cp := *target
			out.Captured = &cp
		}
	}
	p.Position = mv.Dest()
	if p.Kind == Pawn {
		p.FirstMove = false
	}
	g.active = g.active.Opponent()

	out.Piece = *p
	return out, nil
}

func containsMove(moves []Move, mv Move) bool {
	for _, m := range moves {
		if SameMove(m, mv) {
			return true
		}
	}
	return false
}
