package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/savestore"
	"github.com/redis/go-redis/v9"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(ev Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

type memRecorder struct {
	entries []archive.Entry
	err     error
}

func (r *memRecorder) RecordMove(_ context.Context, e archive.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

type failingStore struct {
	savestore.Store
	saveErr error
	loadErr error
}

func (s failingStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Store.Load(ctx)
}

func (s failingStore) Save(ctx context.Context, snap engine.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, snap)
}

func fixedNow() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newController(t *testing.T, store savestore.Store, opts Options) *Controller {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	c, err := NewController(store, opts)
	if err != nil { t.Fatalf("NewController: %v", err) }
	if err := c.Start(context.Background()); err != nil { t.Fatalf("Start: %v", err) }
	return c
}

func adv(row, col int) engine.Move { return engine.Advance{To: engine.Position{Row: row, Col: col}} }

func TestStartWithEmptyStoreBeginsStandardGame(t *testing.T) {
	c := newController(t, savestore.NewMemoryStore(), Options{})
	v, err := c.State()
	if err != nil { t.Fatalf("State: %v", err) }
	if v.Turn != engine.White || len(v.Pieces) != 32 || len(v.Captures) != 0 {
		t.Fatalf("unexpected fresh view: turn=%s pieces=%d captures=%d", v.Turn, len(v.Pieces), len(v.Captures))
	}
	if v.GameID == "" {
		t.Fatalf("game id not assigned")
	}
}

func TestStartDiscardsMalformedSnapshot(t *testing.T) {
	cases := map[string]map[string]string{
		"bad json": {"pieces": "{", "captures": "[]", "activeColor": `"white"`},
		"bad color": {
			"pieces":      `[{"id":"wk","kind":"king","row":7,"col":4,"color":"white","firstMoveEligible":false}]`,
			"captures":    "[]",
			"activeColor": `"green"`,
		},
		"unknown capture": {
			"pieces":      `[{"id":"wk","kind":"king","row":7,"col":4,"color":"white","firstMoveEligible":false}]`,
			"captures":    `["nobody"]`,
			"activeColor": `"white"`,
		},
	}
	for name, vals := range cases {
		t.Run(name, func(t *testing.T) {
			store := savestore.NewMemoryStore()
			for k, v := range vals {
				store.Put(k, []byte(v))
			}
			c := newController(t, store, Options{})
			v, _ := c.State()
			if len(v.Pieces) != 32 || v.Turn != engine.White {
				t.Fatalf("expected fresh standard game, got %d pieces turn %s", len(v.Pieces), v.Turn)
			}
		})
	}
}

func TestStartReturnsStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	c, err := NewController(failingStore{Store: savestore.NewMemoryStore(), loadErr: boom}, Options{})
	if err != nil { t.Fatalf("NewController: %v", err) }
	if err := c.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start err = %v, want %v", err, boom)
	}
	if _, err := c.State(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("State before start err = %v", err)
	}
}

func TestMovesSurviveRestartThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := savestore.NewRedisStore(rdb, "test", 0)
	ctx := context.Background()

	c := newController(t, store, Options{})
	if _, err := c.ApplyMove(ctx, "wp4", adv(4, 4)); err != nil { t.Fatalf("ApplyMove: %v", err) }
	if _, err := c.ApplyMove(ctx, "bp3", adv(3, 3)); err != nil { t.Fatalf("ApplyMove: %v", err) }
	take := engine.Capture{To: engine.Position{Row: 3, Col: 3}, Target: engine.PieceRef{ID: "bp3"}}
	before, err := c.ApplyMove(ctx, "wp4", take)
	if err != nil { t.Fatalf("ApplyMove capture: %v", err) }

	again := newController(t, store, Options{})
	after, err := again.State()
	if err != nil { t.Fatalf("State: %v", err) }
	if diff := cmp.Diff(before.Pieces, after.Pieces); diff != "" {
		t.Fatalf("pieces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bp3"}, after.Captures); diff != "" {
		t.Fatalf("captures mismatch (-want +got):\n%s", diff)
	}
	if after.Turn != engine.Black {
		t.Fatalf("turn = %s, want black", after.Turn)
	}
	if after.FEN != before.FEN {
		t.Fatalf("FEN changed across restart: %q vs %q", before.FEN, after.FEN)
	}
}

func TestApplyMoveCaptureRecordsOnce(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	rec := &memRecorder{}
	c := newController(t, savestore.NewMemoryStore(), Options{Notifier: n, Recorder: rec})

	steps := []struct {
		id string
		mv engine.Move
	}{
		{"wn1", adv(5, 2)},
		{"bp3", adv(3, 3)},
		{"wn1", engine.Capture{To: engine.Position{Row: 3, Col: 3}, Target: engine.PieceRef{ID: "bp3"}}},
	}
	var v View
	for _, s := range steps {
		var err error
		v, err = c.ApplyMove(ctx, s.id, s.mv)
		if err != nil { t.Fatalf("ApplyMove %s: %v", s.id, err) }
	}

	if diff := cmp.Diff([]string{"bp3"}, v.Captures); diff != "" {
		t.Fatalf("captures mismatch (-want +got):\n%s", diff)
	}
	if _, ok := v.Piece("bp3"); ok {
		t.Fatalf("captured piece still listed as live")
	}
	if got := len(v.Taken[engine.White]); got != 1 {
		t.Fatalf("white taken = %d, want 1", got)
	}
	if v.Ply != 3 {
		t.Fatalf("ply = %d, want 3", v.Ply)
	}

	if len(rec.entries) != 3 {
		t.Fatalf("recorded %d entries, want 3", len(rec.entries))
	}
	last := rec.entries[2]
	if last.CapturedID != "bp3" || last.UCI != "c3d5" || last.Ply != 3 || last.GameID != v.GameID {
		t.Fatalf("unexpected archive entry: %+v", last)
	}

	if len(n.events) != 3 {
		t.Fatalf("notified %d events, want 3", len(n.events))
	}
	if n.events[2].Type != EventTurnChanged || n.events[2].Turn != engine.Black || n.events[2].Move != "c3d5" {
		t.Fatalf("unexpected event: %+v", n.events[2])
	}
}

func TestApplyMoveRejectsWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	store := savestore.NewMemoryStore()
	c := newController(t, store, Options{Notifier: n})

	cases := []struct {
		name string
		id   string
		mv   engine.Move
		want error
	}{
		{"unknown piece", "zz", adv(4, 4), engine.ErrUnknownPiece},
		{"opponent piece", "bp4", adv(2, 4), engine.ErrMoveNotGenerated},
		{"not generated", "wp4", adv(3, 4), engine.ErrMoveNotGenerated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.ApplyMove(ctx, tc.id, tc.mv); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if len(n.events) != 0 {
		t.Fatalf("rejected moves notified %d events", len(n.events))
	}
	if snap, _ := store.Load(ctx); snap != nil {
		t.Fatalf("rejected moves were persisted")
	}
}

func TestApplyMovePersistFailureKeepsMove(t *testing.T) {
	boom := errors.New("disk full")
	c := newController(t, failingStore{Store: savestore.NewMemoryStore(), saveErr: boom}, Options{})
	v, err := c.ApplyMove(context.Background(), "wp4", adv(4, 4))
	if !errors.Is(err, ErrPersist) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrPersist wrapping %v", err, boom)
	}
	if v.Turn != engine.Black {
		t.Fatalf("move was not kept after persist failure")
	}
}

func TestArchiveFailureIsNotFatal(t *testing.T) {
	rec := &memRecorder{err: errors.New("db down")}
	c := newController(t, savestore.NewMemoryStore(), Options{Recorder: rec})
	if _, err := c.ApplyMove(context.Background(), "wp0", adv(5, 0)); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
}

func TestResetClearsStoreAndRenewsGameID(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	store := savestore.NewMemoryStore()
	c := newController(t, store, Options{Notifier: n})
	first, _ := c.State()
	if _, err := c.ApplyMove(ctx, "wp4", adv(4, 4)); err != nil { t.Fatalf("ApplyMove: %v", err) }

	v, err := c.Reset(ctx)
	if err != nil { t.Fatalf("Reset: %v", err) }
	if v.GameID == first.GameID {
		t.Fatalf("game id not renewed")
	}
	if v.Turn != engine.White || v.Ply != 0 || len(v.Pieces) != 32 {
		t.Fatalf("reset view not fresh: %+v", v)
	}
	if snap, err := store.Load(ctx); err != nil || snap != nil {
		t.Fatalf("store not cleared: %v %v", snap, err)
	}
	last := n.events[len(n.events)-1]
	if last.Type != EventReset || last.GameID != v.GameID {
		t.Fatalf("unexpected reset event: %+v", last)
	}
}

func TestPossibleMovesOpponentAndUnknown(t *testing.T) {
	c := newController(t, savestore.NewMemoryStore(), Options{})
	for _, id := range []string{"bn1", "nope"} {
		moves, err := c.PossibleMoves(id)
		if err != nil { t.Fatalf("PossibleMoves: %v", err) }
		if len(moves) != 0 {
			t.Fatalf("%s: got %d moves, want 0", id, len(moves))
		}
	}
	moves, _ := c.PossibleMoves("wn1")
	if len(moves) != 2 {
		t.Fatalf("wn1: got %d moves, want 2", len(moves))
	}
}
