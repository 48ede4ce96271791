package engine

// Offset is one step of a ray.
type Offset struct {
	Row int
	Col int
}

type rayConfig struct {
	dirs  []Offset
	limit int
}

var (
	orthogonal = []Offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal   = []Offset{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}
	allDirs    = append(append([]Offset{}, orthogonal...), diagonal...)
	knightL    = []Offset{{-2, 1}, {-2, -1}, {2, 1}, {2, -1}, {-1, 2}, {-1, -2}, {1, 2}, {1, -2}}
)

// rays per piece type; pawns are handled separately.
var rayTable = map[Kind]rayConfig{
	Rook:   {dirs: orthogonal, limit: 7},
	Bishop: {dirs: diagonal, limit: 7},
	Queen:  {dirs: allDirs, limit: 7},
	King:   {dirs: allDirs, limit: 1},
	Knight: {dirs: knightL, limit: 1},
}

// Forward returns the row step of a pawn of color c.
func Forward(c Color) int {
	if c == Black {
		return 1
	}
	return -1
}

// GenerateMoves returns the pseudo-legal moves of the piece with the given id.
func (g *Game) GenerateMoves(id string) []Move {
	p, ok := g.byID[id]
	if !ok || g.captures.Contains(id) {
		return nil
	}
	return g.GenerateMovesFor(*p)
}

// GenerateMovesFor returns the pseudo-legal moves of p against the current
// board. Pieces of the side not to move have none. No self-check filtering.
func (g *Game) GenerateMovesFor(p Piece) []Move {
	if p.Color != g.active {
		return nil
	}
	if p.Kind == Pawn {
		return g.pawnMoves(p)
	}
	cfg, ok := rayTable[p.Kind]
	if !ok {
		return nil
	}
	var moves []Move
	for _, d := range cfg.dirs {
		moves = g.scan(moves, p, d, cfg.limit)
	}
	return moves
}

// scan walks from p along d for at most limit steps. Empty cells become
// advances; the first obstruction ends the ray and, for non-pawns, becomes a
// capture when it holds an opposing piece.
func (g *Game) scan(moves []Move, p Piece, d Offset, limit int) []Move {
	cur := p.Position
	for i := 0; i < limit; i++ {
		cur = cur.step(d)
		if !InBounds(cur.Row, cur.Col) {
			break
		}
		other := g.pieceAt(cur.Row, cur.Col)
		if other == nil {
			moves = append(moves, Advance{To: cur})
			continue
		}
		if p.Kind != Pawn && other.Color != p.Color {
			moves = append(moves, Capture{To: cur, Target: PieceRef{ID: other.ID}})
		}
		break
	}
	return moves
}

func (g *Game) pawnMoves(p Piece) []Move {
	fwd := Offset{Row: Forward(p.Color)}
	limit := 1
	if p.FirstMove {
		limit = 2
	}
	moves := g.scan(nil, p, fwd, limit)

	ahead := p.Position.step(fwd)
	for _, dc := range []int{1, -1} {
		cell := Position{Row: ahead.Row, Col: ahead.Col + dc}
		other := g.pieceAt(cell.Row, cell.Col)
		if other == nil || other.Color == p.Color {
			continue
		}
		moves = append(moves, Capture{To: cell, Target: PieceRef{ID: other.ID}})
	}
	return moves
}
