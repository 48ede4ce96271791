package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := NewStandardGame()
	for _, step := range []struct {
		id string
		mv Move
	}{
		{"wp3", Advance{To: Position{4, 3}}},
		{"bp4", Advance{To: Position{3, 4}}},
		{"wp3", Capture{To: Position{3, 4}, Target: PieceRef{ID: "bp4"}}},
	} {
		if _, err := g.Apply(step.id, step.mv); err != nil {
			t.Fatalf("Apply %s: %v", step.id, err)
		}
	}

	enc, err := g.Snapshot().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	snap, err := enc.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if diff := cmp.Diff(g.Pieces(), restored.Pieces()); diff != "" {
		t.Fatalf("pieces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Captures(), restored.Captures()); diff != "" {
		t.Fatalf("captures mismatch (-want +got):\n%s", diff)
	}
	if restored.Active() != Black {
		t.Fatalf("expected black to move, got %s", restored.Active())
	}
}

func TestEncodedFieldNames(t *testing.T) {
	g := mustGame(t, White, at("wp0", Pawn, White, 6, 0))
	enc, err := g.Snapshot().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `[{"id":"wp0","kind":"pawn","row":6,"col":0,"color":"white","firstMoveEligible":true}]`
	if string(enc.Pieces) != want {
		t.Fatalf("pieces = %s", enc.Pieces)
	}
	if string(enc.Captures) != `[]` || string(enc.ActiveColor) != `"white"` {
		t.Fatalf("captures=%s active=%s", enc.Captures, enc.ActiveColor)
	}
}

func TestRestoreRejectsMalformed(t *testing.T) {
	base := NewStandardGame().Snapshot()
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"bad color", func(s *Snapshot) { s.ActiveColor = "green" }},
		{"bad kind", func(s *Snapshot) { s.Pieces[0].Kind = "dragon" }},
		{"off board", func(s *Snapshot) { s.Pieces[0].Row = 9 }},
		{"shared cell", func(s *Snapshot) { s.Pieces[1].Row, s.Pieces[1].Col = s.Pieces[0].Row, s.Pieces[0].Col }},
		{"duplicate id", func(s *Snapshot) { s.Pieces[1].ID = s.Pieces[0].ID }},
		{"unknown capture", func(s *Snapshot) { s.Captures = []string{"nobody"} }},
		{"repeated capture", func(s *Snapshot) { s.Captures = []string{"bp0", "bp0"} }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Pieces = append([]PieceRecord(nil), base.Pieces...)
			tt.mutate(&s)
			if _, err := Restore(s); !errors.Is(err, ErrMalformedSnapshot) {
				t.Fatalf("expected ErrMalformedSnapshot, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := map[string]Encoded{
		"pieces":   {Pieces: []byte(`{`), Captures: []byte(`[]`), ActiveColor: []byte(`"white"`)},
		"captures": {Pieces: []byte(`[]`), Captures: []byte(`7`), ActiveColor: []byte(`"white"`)},
		"color":    {Pieces: []byte(`[]`), Captures: []byte(`[]`), ActiveColor: []byte(`white`)},
		"null":     {Pieces: []byte(`null`), Captures: []byte(`[]`), ActiveColor: []byte(`"white"`)},
	}
	for name, enc := range tests {
		if _, err := enc.Decode(); !errors.Is(err, ErrMalformedSnapshot) {
			t.Fatalf("%s: expected ErrMalformedSnapshot, got %v", name, err)
		}
	}
}
