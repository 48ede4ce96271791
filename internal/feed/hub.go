// Package feed pushes board change events to websocket subscribers.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	pingInterval = 15 * time.Second
	writeTimeout = 5 * time.Second
	sendBuffer   = 16
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected subscriber. Subscribers that fall
// behind are dropped.
type Hub struct {
	allowOrigins map[string]bool
	logger       *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast chan []byte
}

// NewHub builds a hub. An empty allow list accepts any Origin; otherwise a
// request carrying an Origin header must match one entry exactly.
func NewHub(allow []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := map[string]bool{}
	for _, a := range allow {
		if a = strings.TrimSpace(a); a != "" {
			m[a] = true
		}
	}
	return &Hub{
		allowOrigins: m,
		logger:       logger,
		clients:      map[*client]struct{}{},
		broadcast:    make(chan []byte, 64),
	}
}

// Run delivers queued events until ctx is done, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("feed_subscriber_slow", zap.String("client_id", c.id))
					go h.drop(c, websocket.StatusPolicyViolation, "too slow")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Notify implements session.Notifier.
func (h *Hub) Notify(ev session.Event) {
	msg, err := json.Marshal(boarddto.Event{
		Type:   ev.Type,
		Turn:   string(ev.Turn),
		GameID: ev.GameID,
		Move:   ev.Move,
	})
	if err != nil {
		h.logger.Error("feed_encode_failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("feed_queue_full", zap.String("type", ev.Type))
	}
}

// Count reports the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) originAllowed(origin string) bool {
	return origin == "" || len(h.allowOrigins) == 0 || h.allowOrigins[origin]
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.originAllowed(r.Header.Get("Origin")) {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Warn("feed_accept_failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("feed_subscriber_connected", zap.String("client_id", c.id))

	ctx := conn.CloseRead(r.Context())
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		h.drop(c, websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client, code websocket.StatusCode, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = c.conn.Close(code, reason)
	h.logger.Info("feed_subscriber_closed", zap.String("client_id", c.id), zap.String("reason", reason))
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.drop(c, websocket.StatusGoingAway, "shutdown")
	}
}
