package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string
	FeedAddr string

	RedisURL       string
	RedisKeyPrefix string
	SnapshotTTL    time.Duration

	DatabaseURL string

	FeedAllowedOrigins []string
	MessagesDir        string

	RenderSquareSize int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:         ":8080",
		FeedAddr:         ":8081",
		RedisKeyPrefix:   "board",
		RenderSquareSize: 64,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("FEED_ADDR")); v != "" {
		cfg.FeedAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("REDIS_KEY_PREFIX")); v != "" {
		cfg.RedisKeyPrefix = v
	}
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL_SEC")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SNAPSHOT_TTL_SEC must be a non-negative integer, got %q", v)
		}
		cfg.SnapshotTTL = time.Duration(n) * time.Second
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.FeedAllowedOrigins = splitList(os.Getenv("FEED_ALLOWED_ORIGINS"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("RENDER_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 16 && n <= 256 {
			cfg.RenderSquareSize = n
		}
	}

	if cfg.HTTPAddr == cfg.FeedAddr {
		return nil, errors.New("HTTP_ADDR and FEED_ADDR must differ")
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
