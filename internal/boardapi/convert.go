package boardapi

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/notation"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
)

func pieceDTO(p engine.Piece) boarddto.Piece {
	return boarddto.Piece{
		ID:        p.ID,
		Kind:      string(p.Kind),
		Color:     string(p.Color),
		Row:       p.Position.Row,
		Col:       p.Position.Col,
		FirstMove: p.FirstMove,
	}
}

func moveDTO(mv engine.Move) boarddto.Move {
	out := boarddto.Move{
		Row:    mv.Dest().Row,
		Col:    mv.Dest().Col,
		Square: notation.SquareName(mv.Dest()),
	}
	switch m := mv.(type) {
	case engine.Capture:
		out.Type = boarddto.MoveTypeCapture
		out.Target = m.Target.ID
	default:
		out.Type = boarddto.MoveTypeAdvance
	}
	return out
}

func movesDTO(moves []engine.Move) []boarddto.Move {
	out := make([]boarddto.Move, 0, len(moves))
	for _, mv := range moves {
		out = append(out, moveDTO(mv))
	}
	return out
}

// moveFromDTO converts a requested move. Square is ignored.
func moveFromDTO(m boarddto.Move) (engine.Move, error) {
	to := engine.Position{Row: m.Row, Col: m.Col}
	switch strings.ToLower(strings.TrimSpace(m.Type)) {
	case boarddto.MoveTypeAdvance:
		return engine.Advance{To: to}, nil
	case boarddto.MoveTypeCapture:
		if strings.TrimSpace(m.Target) == "" {
			return nil, fmt.Errorf("take requires a target")
		}
		return engine.Capture{To: to, Target: engine.PieceRef{ID: strings.TrimSpace(m.Target)}}, nil
	default:
		return nil, fmt.Errorf("unknown move type %q", m.Type)
	}
}

func ids(pieces []engine.Piece) []string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, p.ID)
	}
	return out
}

func stateDTO(v session.View) boarddto.StateResponse {
	pieces := make([]boarddto.Piece, 0, len(v.Pieces))
	for _, p := range v.Pieces {
		pieces = append(pieces, pieceDTO(p))
	}
	captures := v.Captures
	if captures == nil {
		captures = []string{}
	}
	return boarddto.StateResponse{
		GameID:   v.GameID,
		Ply:      v.Ply,
		Turn:     string(v.Turn),
		Pieces:   pieces,
		Captures: captures,
		Captured: boarddto.CapturedPieces{
			White: ids(v.Taken[engine.White]),
			Black: ids(v.Taken[engine.Black]),
		},
		FEN: v.FEN,
	}
}
