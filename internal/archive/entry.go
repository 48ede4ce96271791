package archive

import (
	"time"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/notation"
)

// EntryFor builds the archive row for an applied move. fen is the position after it.
func EntryFor(gameID string, ply int, o engine.Outcome, fen string, at time.Time) Entry {
	e := Entry{
		GameID:   gameID,
		Ply:      ply,
		PieceID:  o.Piece.ID,
		Kind:     string(o.Piece.Kind),
		Color:    string(o.Piece.Color),
		From:     notation.SquareName(o.From),
		To:       notation.SquareName(o.Move.Dest()),
		UCI:      notation.UCI(o.From, o.Move),
		FEN:      fen,
		PlayedAt: at,
	}
	if o.Captured != nil {
		e.CapturedID = o.Captured.ID
	}
	return e
}
