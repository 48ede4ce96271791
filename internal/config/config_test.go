package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "FEED_ADDR", "REDIS_URL", "REDIS_KEY_PREFIX", "SNAPSHOT_TTL_SEC", "DATABASE_URL", "FEED_ALLOWED_ORIGINS", "MESSAGES_DIR", "RENDER_SQUARE_SIZE"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil { t.Fatalf("Load: %v", err) }
	want := &AppConfig{HTTPAddr: ":8080", FeedAddr: ":8081", RedisKeyPrefix: "board", RenderSquareSize: 64}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("FEED_ADDR", "127.0.0.1:9001")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("REDIS_KEY_PREFIX", "room42")
	t.Setenv("SNAPSHOT_TTL_SEC", "3600")
	t.Setenv("FEED_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("RENDER_SQUARE_SIZE", "1000")

	cfg, err := Load()
	if err != nil { t.Fatalf("Load: %v", err) }
	if cfg.SnapshotTTL != time.Hour || cfg.RedisKeyPrefix != "room42" || cfg.RenderSquareSize != 64 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.FeedAllowedOrigins); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SNAPSHOT_TTL_SEC", "-5")
	if _, err := Load(); err == nil { t.Fatalf("expected error for negative ttl") }

	t.Setenv("SNAPSHOT_TTL_SEC", "")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("FEED_ADDR", ":7000")
	if _, err := Load(); err == nil { t.Fatalf("expected error for identical addresses") }
}
