// Package session owns the live game: it restores it from the snapshot
// store, applies moves, persists after each one and tells listeners the
// board changed.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/notation"
	"github.com/park285/cheese-board/internal/savestore"
	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("session not started")
	// ErrPersist wraps store failures after a move was already applied in memory.
	ErrPersist = errors.New("persist snapshot")
)

// Event types sent to the Notifier.
const (
	EventTurnChanged = "turn_changed"
	EventReset       = "reset"
)

// Event is the refresh signal emitted after every state change.
type Event struct {
	Type   string
	Turn   engine.Color
	GameID string
	Move   string // UCI of the applied move; empty on reset
}

// Recorder receives every applied move. archive.Repository satisfies it.
type Recorder interface {
	RecordMove(ctx context.Context, e archive.Entry) error
}

// Notifier is told about every state change.
type Notifier interface {
	Notify(ev Event)
}

// View is a read-only copy of the game for presenters.
type View struct {
	GameID   string
	Ply      int
	Turn     engine.Color
	Pieces   []engine.Piece // live pieces
	Captures []string
	Taken    map[engine.Color][]engine.Piece // pieces taken by each side
	FEN      string
	LastMove *engine.Outcome
}

// Piece returns the live piece with the given id.
func (v View) Piece(id string) (engine.Piece, bool) {
	for _, p := range v.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return engine.Piece{}, false
}

type Options struct {
	Recorder Recorder
	Notifier Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// Controller serialises access to one engine.Game.
type Controller struct {
	mu       sync.Mutex
	store    savestore.Store
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	game   *engine.Game
	gameID string
	ply    int
	last   *engine.Outcome
}

func NewController(store savestore.Store, opts Options) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		store:    store,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// Start restores the saved game or begins a standard one. A snapshot that
// cannot be decoded or fails validation is discarded with a warning; only
// store I/O failures are returned.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	game, restored, err := c.restore(ctx)
	if err != nil {
		return err
	}
	c.game = game
	c.gameID = uuid.NewString()
	c.ply = 0
	c.last = nil
	c.logger.Info("board_session_started",
		zap.String("game_id", c.gameID),
		zap.Bool("restored", restored),
		zap.String("turn", string(game.Active())),
		zap.Int("captures", len(game.Captures())),
	)
	return nil
}

func (c *Controller) restore(ctx context.Context) (*engine.Game, bool, error) {
	snap, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, engine.ErrMalformedSnapshot):
		c.logger.Warn("board_snapshot_malformed", zap.Error(err))
		return engine.NewStandardGame(), false, nil
	case err != nil:
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	case snap == nil:
		return engine.NewStandardGame(), false, nil
	}
	game, err := engine.Restore(*snap)
	if err != nil {
		c.logger.Warn("board_snapshot_malformed", zap.Error(err))
		return engine.NewStandardGame(), false, nil
	}
	return game, true, nil
}

// PossibleMoves lists the moves of a piece. Unknown, captured and
// opponent pieces have none.
func (c *Controller) PossibleMoves(id string) ([]engine.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return nil, ErrNotStarted
	}
	return c.game.GenerateMoves(id), nil
}

// ApplyMove plays mv for the piece with the given id and saves the result.
// When saving fails the move stays applied and the returned error wraps
// ErrPersist.
func (c *Controller) ApplyMove(ctx context.Context, id string, mv engine.Move) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return View{}, ErrNotStarted
	}

	out, err := c.game.Apply(id, mv)
	if err != nil {
		return View{}, err
	}
	c.ply++
	c.last = &out
	fen := notation.FEN(c.game)
	uci := notation.UCI(out.From, out.Move)
	c.logger.Info("board_move_applied",
		zap.String("game_id", c.gameID),
		zap.Int("ply", c.ply),
		zap.String("move", notation.Describe(out)),
		zap.String("turn", string(c.game.Active())),
	)

	var persistErr error
	if err := c.store.Save(ctx, c.game.Snapshot()); err != nil {
		c.logger.Error("board_snapshot_save_failed", zap.String("game_id", c.gameID), zap.Error(err))
		persistErr = fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if c.recorder != nil {
		entry := archive.EntryFor(c.gameID, c.ply, out, fen, c.now())
		if err := c.recorder.RecordMove(ctx, entry); err != nil {
			c.logger.Warn("board_archive_failed",
				zap.String("game_id", c.gameID),
				zap.Int("ply", c.ply),
				zap.Error(err),
			)
		}
	}

	c.notify(Event{Type: EventTurnChanged, Turn: c.game.Active(), GameID: c.gameID, Move: uci})
	return c.viewLocked(), persistErr
}

// Reset clears the saved snapshot and starts a new standard game under a
// fresh game id.
func (c *Controller) Reset(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return View{}, fmt.Errorf("clear snapshot: %w", err)
	}
	prev := c.gameID
	c.game = engine.NewStandardGame()
	c.gameID = uuid.NewString()
	c.ply = 0
	c.last = nil
	c.logger.Info("board_reset", zap.String("previous_game_id", prev), zap.String("game_id", c.gameID))
	c.notify(Event{Type: EventReset, Turn: c.game.Active(), GameID: c.gameID})
	return c.viewLocked(), nil
}

// State returns a copy of the current game.
func (c *Controller) State() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return View{}, ErrNotStarted
	}
	return c.viewLocked(), nil
}

func (c *Controller) viewLocked() View {
	var last *engine.Outcome
	if c.last != nil {
		cp := *c.last
		last = &cp
	}
	return View{
		GameID:   c.gameID,
		Ply:      c.ply,
		Turn:     c.game.Active(),
		Pieces:   c.game.LivePieces(),
		Captures: c.game.Captures(),
		Taken: map[engine.Color][]engine.Piece{
			engine.White: c.game.CapturedBy(engine.White),
			engine.Black: c.game.CapturedBy(engine.Black),
		},
		FEN:      notation.FEN(c.game),
		LastMove: last,
	}
}

func (c *Controller) notify(ev Event) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ev)
}
