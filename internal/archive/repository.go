package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Entry is one applied move.
type Entry struct {
	GameID     string
	Ply        int
	PieceID    string
	Kind       string
	Color      string
	From       string
	To         string
	UCI        string
	CapturedID string
	FEN        string
	PlayedAt   time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *Repository { return &Repository{db: db} }

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

const schema = `CREATE TABLE IF NOT EXISTS board_moves (
    game_id     TEXT        NOT NULL,
    ply         INTEGER     NOT NULL,
    piece_id    TEXT        NOT NULL,
    kind        TEXT        NOT NULL,
    color       TEXT        NOT NULL,
    from_square TEXT        NOT NULL,
    to_square   TEXT        NOT NULL,
    uci         TEXT        NOT NULL,
    captured_id TEXT        NOT NULL DEFAULT '',
    fen         TEXT        NOT NULL,
    played_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (game_id, ply)
)`

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// RecordMove inserts e; replaying the same (game_id, ply) overwrites it.
func (r *Repository) RecordMove(ctx context.Context, e Entry) error {
	if r == nil || r.db == nil {
		return nil
	}
	if e.PlayedAt.IsZero() {
		e.PlayedAt = time.Now()
	}
	q := `INSERT INTO board_moves (
        game_id, ply, piece_id, kind, color, from_square, to_square, uci, captured_id, fen, played_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
      ON CONFLICT (game_id, ply) DO UPDATE SET
        piece_id=EXCLUDED.piece_id,
        kind=EXCLUDED.kind,
        color=EXCLUDED.color,
        from_square=EXCLUDED.from_square,
        to_square=EXCLUDED.to_square,
        uci=EXCLUDED.uci,
        captured_id=EXCLUDED.captured_id,
        fen=EXCLUDED.fen,
        played_at=EXCLUDED.played_at`
	_, err := r.db.ExecContext(ctx, q,
		e.GameID, e.Ply, e.PieceID, e.Kind, e.Color,
		e.From, e.To, e.UCI, e.CapturedID, e.FEN, e.PlayedAt,
	)
	return err
}

// Moves returns the recorded moves of a game in ply order.
func (r *Repository) Moves(ctx context.Context, gameID string) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, ply, piece_id, kind, color, from_square, to_square, uci, captured_id, fen, played_at
      FROM board_moves WHERE game_id = $1 ORDER BY ply`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.GameID, &e.Ply, &e.PieceID, &e.Kind, &e.Color, &e.From, &e.To, &e.UCI, &e.CapturedID, &e.FEN, &e.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
