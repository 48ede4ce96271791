// Package boardapi serves the board over HTTP.
package boardapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// Board is the part of session.Controller the API needs.
type Board interface {
	State() (session.View, error)
	PossibleMoves(id string) ([]engine.Move, error)
	ApplyMove(ctx context.Context, id string, mv engine.Move) (session.View, error)
	Reset(ctx context.Context) (session.View, error)
}

type Server struct {
	board    Board
	renderer *render.Renderer
	msgs     *msgcat.Catalog
	logger   *zap.Logger
	srv      *fasthttp.Server
}

func New(board Board, renderer *render.Renderer, msgs *msgcat.Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if msgs == nil {
		msgs = msgcat.MustDefault()
	}
	if renderer == nil {
		renderer = render.New(0)
	}
	s := &Server{board: board, renderer: renderer, msgs: msgs, logger: logger}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "cheese-board",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodyBytes,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("board_api_listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler routes requests.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	path := string(ctx.Path())
	switch {
	case path == "/healthz" && method == fasthttp.MethodGet:
		s.health(ctx)
	case path == "/state" && method == fasthttp.MethodGet:
		s.state(ctx)
	case path == "/moves" && method == fasthttp.MethodGet:
		s.moves(ctx)
	case path == "/moves" && method == fasthttp.MethodPost:
		s.apply(ctx)
	case path == "/reset" && method == fasthttp.MethodPost:
		s.reset(ctx)
	case path == "/board.png" && method == fasthttp.MethodGet:
		s.boardImage(ctx)
	case path == "/healthz" || path == "/state" || path == "/moves" || path == "/reset" || path == "/board.png":
		s.fail(ctx, fasthttp.StatusMethodNotAllowed, boarddto.CodeBadRequest,
			s.msgs.Text("api.bad_request", map[string]any{"Detail": "method not allowed"}, "method not allowed"))
	default:
		s.fail(ctx, fasthttp.StatusNotFound, boarddto.CodeBadRequest,
			s.msgs.Text("api.bad_request", map[string]any{"Detail": "no route " + path}, "not found"))
	}
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	v, err := s.board.State()
	if err != nil {
		s.writeJSON(ctx, fasthttp.StatusServiceUnavailable, boarddto.HealthResponse{Status: "starting"})
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, boarddto.HealthResponse{Status: "ok", GameID: v.GameID})
}

func (s *Server) state(ctx *fasthttp.RequestCtx) {
	v, err := s.board.State()
	if err != nil {
		s.internal(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stateDTO(v))
}

func (s *Server) moves(ctx *fasthttp.RequestCtx) {
	id := strings.TrimSpace(string(ctx.QueryArgs().Peek("piece")))
	if id == "" {
		s.badRequest(ctx, "piece is required")
		return
	}
	moves, err := s.board.PossibleMoves(id)
	if err != nil {
		s.internal(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, boarddto.MovesResponse{Piece: id, Moves: movesDTO(moves)})
}

func (s *Server) apply(ctx *fasthttp.RequestCtx) {
	var req boarddto.ApplyRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.badRequest(ctx, "invalid json")
		return
	}
	req.Piece = strings.TrimSpace(req.Piece)
	if req.Piece == "" {
		s.badRequest(ctx, "piece is required")
		return
	}
	mv, err := moveFromDTO(req.Move)
	if err != nil {
		s.badRequest(ctx, err.Error())
		return
	}

	v, err := s.board.ApplyMove(ctx, req.Piece, mv)
	switch {
	case err == nil:
		s.writeJSON(ctx, fasthttp.StatusOK, boarddto.ApplyResponse{State: stateDTO(v)})
	case errors.Is(err, session.ErrPersist):
		s.writeJSON(ctx, fasthttp.StatusOK, boarddto.ApplyResponse{
			State:   stateDTO(v),
			Warning: s.msgs.Text("api.persist_failed", nil, "move not saved"),
		})
	case errors.Is(err, engine.ErrUnknownPiece):
		s.fail(ctx, fasthttp.StatusNotFound, boarddto.CodeUnknownPiece,
			s.msgs.Text("api.unknown_piece", map[string]any{"Piece": req.Piece}, "unknown piece"))
	case errors.Is(err, engine.ErrMoveNotGenerated):
		s.rejected(ctx, req.Piece)
	default:
		s.internal(ctx, err)
	}
}

// rejected distinguishes moving out of turn from an illegal move of the side to move.
func (s *Server) rejected(ctx *fasthttp.RequestCtx, id string) {
	if v, err := s.board.State(); err == nil {
		if p, ok := v.Piece(id); ok && p.Color != v.Turn {
			s.fail(ctx, fasthttp.StatusConflict, boarddto.CodeNotYourTurn,
				s.msgs.Text("api.not_your_turn", map[string]any{"Turn": string(v.Turn)}, "not your turn"))
			return
		}
	}
	s.fail(ctx, fasthttp.StatusConflict, boarddto.CodeMoveRejected,
		s.msgs.Text("api.move_rejected", map[string]any{"Piece": id}, "move rejected"))
}

func (s *Server) reset(ctx *fasthttp.RequestCtx) {
	v, err := s.board.Reset(ctx)
	if err != nil {
		s.internal(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stateDTO(v))
}

func (s *Server) boardImage(ctx *fasthttp.RequestCtx) {
	v, err := s.board.State()
	if err != nil {
		s.internal(ctx, err)
		return
	}
	in := render.Input{
		Pieces:   v.Pieces,
		Turn:     v.Turn,
		LastMove: v.LastMove,
		Header:   s.msgs.Text("board.turn", map[string]any{"Turn": string(v.Turn)}, string(v.Turn)),
		Footer: s.msgs.Text("board.captured", map[string]any{"Side": string(engine.White), "Count": len(v.Taken[engine.White])}, "") +
			"   " +
			s.msgs.Text("board.captured", map[string]any{"Side": string(engine.Black), "Count": len(v.Taken[engine.Black])}, ""),
	}
	if id := strings.TrimSpace(string(ctx.QueryArgs().Peek("piece"))); id != "" {
		if p, ok := v.Piece(id); ok {
			in.Selected = &p
			moves, err := s.board.PossibleMoves(id)
			if err != nil {
				s.internal(ctx, err)
				return
			}
			in.Moves = moves
		}
	}

	png, err := s.renderer.RenderPNG(ctx, in)
	if err != nil {
		s.internal(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(png)
}

func (s *Server) badRequest(ctx *fasthttp.RequestCtx, detail string) {
	s.fail(ctx, fasthttp.StatusBadRequest, boarddto.CodeBadRequest,
		s.msgs.Text("api.bad_request", map[string]any{"Detail": detail}, detail))
}

func (s *Server) internal(ctx *fasthttp.RequestCtx, err error) {
	s.logger.Error("board_api_error",
		zap.String("method", string(ctx.Method())),
		zap.String("path", string(ctx.Path())),
		zap.Error(err),
	)
	retryable := errors.Is(err, session.ErrNotStarted)
	body := boarddto.ErrorResponse{
		Code:      boarddto.CodeInternal,
		Message:   s.msgs.Text("api.internal", nil, "internal error"),
		Retryable: retryable,
	}
	status := fasthttp.StatusInternalServerError
	if retryable {
		status = fasthttp.StatusServiceUnavailable
	}
	s.writeJSON(ctx, status, body)
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, status int, code, message string) {
	s.writeJSON(ctx, status, boarddto.ErrorResponse{Code: code, Message: message})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("board_api_encode_failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
