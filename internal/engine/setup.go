package engine

import "fmt"

var backRank = []struct {
	kind Kind
	tag  string
	cols []int
}{
	{Rook, "r", []int{0, 7}},
	{Knight, "n", []int{1, 6}},
	{Bishop, "b", []int{2, 5}},
	{Queen, "q", []int{3}},
	{King, "k", []int{4}},
}

// NewStandardGame returns the standard starting arrangement with white to move.
// Black occupies rows 0-1, white rows 6-7.
func NewStandardGame() *Game {
	return newGame(StandardPieces(), White)
}

// StandardPieces lists the 32 pieces of the starting arrangement. Ids are
// stable: "br1", "wn2", "bq", "wk", "bp0".."wp7".
func StandardPieces() []Piece {
	pieces := make([]Piece, 0, 32)
	for _, side := range []struct {
		color  Color
		prefix string
		row    int
	}{{Black, "b", 0}, {White, "w", 7}} {
		for _, br := range backRank {
			for i, col := range br.cols {
				id := side.prefix + br.tag
				if len(br.cols) > 1 {
					id = fmt.Sprintf("%s%d", id, i+1)
				}
				pieces = append(pieces, Piece{
					ID:       id,
					Kind:     br.kind,
					Position: Position{Row: side.row, Col: col},
					Color:    side.color,
				})
			}
		}
	}
	for col := 0; col < boardSize; col++ {
		pieces = append(pieces,
			Piece{ID: fmt.Sprintf("bp%d", col), Kind: Pawn, Position: Position{Row: 1, Col: col}, Color: Black, FirstMove: true},
			Piece{ID: fmt.Sprintf("wp%d", col), Kind: Pawn, Position: Position{Row: 6, Col: col}, Color: White, FirstMove: true},
		)
	}
	return pieces
}
