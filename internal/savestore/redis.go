package savestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/redis/go-redis/v9"
)

// RedisStore saves the three snapshot values under <prefix>:<name>.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps rdb. A zero ttl keeps values forever.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "board"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(name string) string { return s.prefix + ":" + name }

func (s *RedisStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	vals, err := s.rdb.MGet(ctx, s.key(keyPieces), s.key(keyCaptures), s.key(keyActiveColor)).Result()
	if err != nil {
		return nil, err
	}
	raw := make([][]byte, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// any missing key means no saved game
			return nil, nil
		}
		raw[i] = []byte(str)
	}
	return decode(raw[0], raw[1], raw[2])
}

func (s *RedisStore) Save(ctx context.Context, snap engine.Snapshot) error {
	enc, err := snap.Encode()
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(keyPieces), enc.Pieces, s.ttl)
	pipe.Set(ctx, s.key(keyCaptures), enc.Captures, s.ttl)
	pipe.Set(ctx, s.key(keyActiveColor), enc.ActiveColor, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.rdb.Del(ctx, s.key(keyPieces), s.key(keyCaptures), s.key(keyActiveColor)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
