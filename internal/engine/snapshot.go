package engine

import (
	"encoding/json"
	"fmt"
)

// PieceRecord is the persisted form of a piece.
type PieceRecord struct {
	ID                string `json:"id"`
	Kind              Kind   `json:"kind"`
	Row               int    `json:"row"`
	Col               int    `json:"col"`
	Color             Color  `json:"color"`
	FirstMoveEligible bool   `json:"firstMoveEligible"`
}

// Snapshot is the persisted game: three independently stored values.
type Snapshot struct {
	Pieces      []PieceRecord `json:"pieces"`
	Captures    []string      `json:"captures"`
	ActiveColor Color         `json:"activeColor"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Pieces:      make([]PieceRecord, 0, len(g.pieces)),
		Captures:    g.captures.IDs(),
		ActiveColor: g.active,
	}
	if s.Captures == nil {
		s.Captures = []string{}
	}
	for _, p := range g.pieces {
		s.Pieces = append(s.Pieces, PieceRecord{
			ID:                p.ID,
			Kind:              p.Kind,
			Row:               p.Position.Row,
			Col:               p.Position.Col,
			Color:             p.Color,
			FirstMoveEligible: p.FirstMove,
		})
	}
	return s
}

// Restore rebuilds a game from a snapshot. Any inconsistency yields an error
// wrapping ErrMalformedSnapshot.
func Restore(s Snapshot) (*Game, error) {
	pieces := make([]Piece, 0, len(s.Pieces))
	for _, r := range s.Pieces {
		pieces = append(pieces, Piece{
			ID:        r.ID,
			Kind:      r.Kind,
			Position:  Position{Row: r.Row, Col: r.Col},
			Color:     r.Color,
			FirstMove: r.FirstMoveEligible,
		})
	}
	return NewGame(pieces, s.ActiveColor, s.Captures)
}

// NewGame builds a game from an explicit arrangement. captured lists ids
// already taken, in order.
func NewGame(pieces []Piece, active Color, captured []string) (*Game, error) {
	if !active.Valid() {
		return nil, fmt.Errorf("%w: active color %q", ErrMalformedSnapshot, active)
	}
	g := newGame(nil, active)
	for i := range pieces {
		p := pieces[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%w: piece %d has no id", ErrMalformedSnapshot, i)
		}
		if _, dup := g.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate piece id %s", ErrMalformedSnapshot, p.ID)
		}
		if !p.Kind.Valid() || !p.Color.Valid() {
			return nil, fmt.Errorf("%w: piece %s has kind %q color %q", ErrMalformedSnapshot, p.ID, p.Kind, p.Color)
		}
		if !InBounds(p.Position.Row, p.Position.Col) {
			return nil, fmt.Errorf("%w: piece %s at %v", ErrMalformedSnapshot, p.ID, p.Position)
		}
		g.pieces = append(g.pieces, &p)
		g.byID[p.ID] = &p
	}
	for _, id := range captured {
		if _, ok := g.byID[id]; !ok {
			return nil, fmt.Errorf("%w: capture of unknown piece %s", ErrMalformedSnapshot, id)
		}
		if err := g.captures.append(id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
	}
	occupied := make(map[Position]string, len(g.pieces))
	for _, p := range g.pieces {
		if g.captures.Contains(p.ID) {
			continue
		}
		if other, ok := occupied[p.Position]; ok {
			return nil, fmt.Errorf("%w: %s and %s share %v", ErrMalformedSnapshot, other, p.ID, p.Position)
		}
		occupied[p.Position] = p.ID
	}
	return g, nil
}

// Encoded is a snapshot split into the three raw JSON values the key-value
// store keeps.
type Encoded struct {
	Pieces      []byte
	Captures    []byte
	ActiveColor []byte
}

// Encode marshals each part of s separately.
func (s Snapshot) Encode() (Encoded, error) {
	var (
		e   Encoded
		err error
	)
	if e.Pieces, err = json.Marshal(s.Pieces); err != nil {
		return Encoded{}, err
	}
	if e.Captures, err = json.Marshal(s.Captures); err != nil {
		return Encoded{}, err
	}
	if e.ActiveColor, err = json.Marshal(s.ActiveColor); err != nil {
		return Encoded{}, err
	}
	return e, nil
}

// Decode parses the three raw values.
func (e Encoded) Decode() (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(e.Pieces, &s.Pieces); err != nil {
		return Snapshot{}, fmt.Errorf("%w: pieces: %v", ErrMalformedSnapshot, err)
	}
	if err := json.Unmarshal(e.Captures, &s.Captures); err != nil {
		return Snapshot{}, fmt.Errorf("%w: captures: %v", ErrMalformedSnapshot, err)
	}
	if err := json.Unmarshal(e.ActiveColor, &s.ActiveColor); err != nil {
		return Snapshot{}, fmt.Errorf("%w: active color: %v", ErrMalformedSnapshot, err)
	}
	if s.Pieces == nil {
		return Snapshot{}, fmt.Errorf("%w: pieces: null", ErrMalformedSnapshot)
	}
	return s, nil
}
