package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/boardapi"
	appcfg "github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/feed"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/savestore"
	"github.com/park285/cheese-board/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("board_store_init_failed", zap.Error(err))
	}
	defer closeStore()

	opts := session.Options{Logger: logger}
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("board_archive_init_failed", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("board_archive_schema_failed", zap.Error(err))
		}
		opts.Recorder = repo
	}

	hub := feed.NewHub(cfg.FeedAllowedOrigins, logger)
	go hub.Run(ctx)
	opts.Notifier = hub

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("board_messages_load_failed", zap.Error(err))
	}

	ctl, err := session.NewController(store, opts)
	if err != nil {
		logger.Fatal("board_session_init_failed", zap.Error(err))
	}
	if err := ctl.Start(ctx); err != nil {
		logger.Fatal("board_session_start_failed", zap.Error(err))
	}

	api := boardapi.New(ctl, render.New(cfg.RenderSquareSize), msgs, logger)

	mux := http.NewServeMux()
	mux.Handle("/feed", hub)
	feedSrv := &http.Server{
		Addr:              cfg.FeedAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- api.ListenAndServe(cfg.HTTPAddr) }()
	go func() {
		logger.Info("board_feed_listening", zap.String("addr", cfg.FeedAddr))
		if err := feedSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("board_shutdown_requested")
	case err := <-errCh:
		logger.Error("board_server_failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Warn("board_api_shutdown_failed", zap.Error(err))
	}
	if err := feedSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("board_feed_shutdown_failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) (savestore.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("board_store_memory")
		return savestore.NewMemoryStore(), func() {}, nil
	}
	opt, err := savestore.ParseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	store := savestore.NewRedisStore(rdb, cfg.RedisKeyPrefix, cfg.SnapshotTTL)
	logger.Info("board_store_redis", zap.String("addr", opt.Addr), zap.String("prefix", cfg.RedisKeyPrefix))
	return store, func() { _ = store.Close() }, nil
}
