package savestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/redis/go-redis/v9"
)

// Store keeps the saved game between sessions.
type Store interface {
	// Load returns nil, nil when nothing is saved.
	Load(ctx context.Context) (*engine.Snapshot, error)
	Save(ctx context.Context, snap engine.Snapshot) error
	Clear(ctx context.Context) error
}

// ErrMalformed marks a saved value that could not be decoded.
var ErrMalformed = engine.ErrMalformedSnapshot

const (
	keyPieces      = "pieces"
	keyCaptures    = "captures"
	keyActiveColor = "activeColor"
)

func decode(pieces, captures, active []byte) (*engine.Snapshot, error) {
	snap, err := engine.Encoded{Pieces: pieces, Captures: captures, ActiveColor: active}.Decode()
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ParseRedisURL converts redis://[:password@]host:port[/db] into client options.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("redis url has no host")
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("redis db index %q: %w", p, err)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
