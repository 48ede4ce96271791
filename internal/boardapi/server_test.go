package boardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/savestore"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type harness struct {
	client *fasthttp.Client
	store  *savestore.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := savestore.NewMemoryStore()
	ctl, err := session.NewController(store, session.Options{})
	if err != nil { t.Fatalf("NewController: %v", err) }
	if err := ctl.Start(context.Background()); err != nil { t.Fatalf("Start: %v", err) }

	srv := New(ctl, render.New(24), nil, nil)
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return &harness{
		client: &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }},
		store:  store,
	}
}

func (h *harness) do(t *testing.T, method, uri string, body any, out any) int {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.Header.SetMethod(method)
	req.SetRequestURI("http://board" + uri)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil { t.Fatalf("marshal: %v", err) }
		req.Header.SetContentType("application/json")
		req.SetBody(raw)
	}
	if err := h.client.Do(req, resp); err != nil { t.Fatalf("%s %s: %v", method, uri, err) }
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			t.Fatalf("decode %s: %v (%s)", uri, err, resp.Body())
		}
	}
	return resp.StatusCode()
}

func TestStateAndMoves(t *testing.T) {
	h := newHarness(t)

	var st boarddto.StateResponse
	if code := h.do(t, "GET", "/state", nil, &st); code != 200 {
		t.Fatalf("GET /state = %d", code)
	}
	if st.Turn != "white" || len(st.Pieces) != 32 || len(st.Captures) != 0 || st.GameID == "" {
		t.Fatalf("unexpected state: %+v", st)
	}

	var mv boarddto.MovesResponse
	if code := h.do(t, "GET", "/moves?piece=wn1", nil, &mv); code != 200 {
		t.Fatalf("GET /moves = %d", code)
	}
	want := []boarddto.Move{
		{Type: "move", Row: 5, Col: 0, Square: "a3"},
		{Type: "move", Row: 5, Col: 2, Square: "c3"},
	}
	got := mv.Moves
	if len(got) == 2 && got[0].Col > got[1].Col {
		got[0], got[1] = got[1], got[0]
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}

	var none boarddto.MovesResponse
	h.do(t, "GET", "/moves?piece=bn1", nil, &none)
	if len(none.Moves) != 0 {
		t.Fatalf("opponent piece has %d moves", len(none.Moves))
	}
}

func TestApplyMoveFlow(t *testing.T) {
	h := newHarness(t)

	var res boarddto.ApplyResponse
	req := boarddto.ApplyRequest{Piece: "wp4", Move: boarddto.Move{Type: "move", Row: 4, Col: 4}}
	if code := h.do(t, "POST", "/moves", req, &res); code != 200 {
		t.Fatalf("POST /moves = %d", code)
	}
	if res.State.Turn != "black" || res.Warning != "" {
		t.Fatalf("unexpected apply response: %+v", res)
	}

	h.do(t, "POST", "/moves", boarddto.ApplyRequest{Piece: "bp3", Move: boarddto.Move{Type: "move", Row: 3, Col: 3}}, &res)
	take := boarddto.ApplyRequest{Piece: "wp4", Move: boarddto.Move{Type: "take", Row: 3, Col: 3, Target: "bp3"}}
	if code := h.do(t, "POST", "/moves", take, &res); code != 200 {
		t.Fatalf("capture = %d", code)
	}
	if diff := cmp.Diff([]string{"bp3"}, res.State.Captures); diff != "" {
		t.Fatalf("captures mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bp3"}, res.State.Captured.White); diff != "" {
		t.Fatalf("white tally mismatch (-want +got):\n%s", diff)
	}
	if snap, err := h.store.Load(context.Background()); err != nil || snap == nil || len(snap.Captures) != 1 {
		t.Fatalf("move not persisted: %v %v", snap, err)
	}
}

func TestApplyMoveErrors(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name string
		body any
		code int
		want string
	}{
		{"garbage", "not an object", 400, boarddto.CodeBadRequest},
		{"no piece", boarddto.ApplyRequest{Move: boarddto.Move{Type: "move", Row: 4, Col: 4}}, 400, boarddto.CodeBadRequest},
		{"bad type", boarddto.ApplyRequest{Piece: "wp4", Move: boarddto.Move{Type: "jump", Row: 4, Col: 4}}, 400, boarddto.CodeBadRequest},
		{"take without target", boarddto.ApplyRequest{Piece: "wp4", Move: boarddto.Move{Type: "take", Row: 4, Col: 4}}, 400, boarddto.CodeBadRequest},
		{"unknown piece", boarddto.ApplyRequest{Piece: "zz", Move: boarddto.Move{Type: "move", Row: 4, Col: 4}}, 404, boarddto.CodeUnknownPiece},
		{"out of turn", boarddto.ApplyRequest{Piece: "bp4", Move: boarddto.Move{Type: "move", Row: 2, Col: 4}}, 409, boarddto.CodeNotYourTurn},
		{"illegal", boarddto.ApplyRequest{Piece: "wp4", Move: boarddto.Move{Type: "move", Row: 3, Col: 4}}, 409, boarddto.CodeMoveRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e boarddto.ErrorResponse
			if code := h.do(t, "POST", "/moves", tc.body, &e); code != tc.code {
				t.Fatalf("status = %d, want %d", code, tc.code)
			}
			if e.Code != tc.want || e.Message == "" {
				t.Fatalf("error = %+v, want code %s", e, tc.want)
			}
		})
	}

	var st boarddto.StateResponse
	h.do(t, "GET", "/state", nil, &st)
	if st.Turn != "white" || st.Ply != 0 {
		t.Fatalf("rejected requests changed state: %+v", st)
	}
}

func TestResetAndRouting(t *testing.T) {
	h := newHarness(t)
	var before boarddto.StateResponse
	h.do(t, "GET", "/state", nil, &before)
	h.do(t, "POST", "/moves", boarddto.ApplyRequest{Piece: "wp0", Move: boarddto.Move{Type: "move", Row: 5, Col: 0}}, nil)

	var after boarddto.StateResponse
	if code := h.do(t, "POST", "/reset", nil, &after); code != 200 {
		t.Fatalf("POST /reset = %d", code)
	}
	if after.GameID == before.GameID || after.Turn != "white" || after.Ply != 0 {
		t.Fatalf("reset state unexpected: %+v", after)
	}

	var health boarddto.HealthResponse
	if code := h.do(t, "GET", "/healthz", nil, &health); code != 200 || health.Status != "ok" {
		t.Fatalf("healthz = %d %+v", code, health)
	}
	if code := h.do(t, "DELETE", "/state", nil, nil); code != 405 {
		t.Fatalf("DELETE /state = %d, want 405", code)
	}
	if code := h.do(t, "GET", "/nope", nil, nil); code != 404 {
		t.Fatalf("GET /nope = %d, want 404", code)
	}
}

func TestBoardImage(t *testing.T) {
	h := newHarness(t)
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI("http://board/board.png?piece=wn1")
	if err := h.client.Do(req, resp); err != nil { t.Fatalf("GET /board.png: %v", err) }
	if resp.StatusCode() != 200 || string(resp.Header.ContentType()) != "image/png" {
		t.Fatalf("status=%d type=%s", resp.StatusCode(), resp.Header.ContentType())
	}
	if _, err := png.Decode(bytes.NewReader(resp.Body())); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}
