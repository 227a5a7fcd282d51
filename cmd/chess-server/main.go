package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-area/internal/area"
	appcfg "github.com/park285/chess-area/internal/config"
	"github.com/park285/chess-area/internal/history"
	"github.com/park285/chess-area/internal/msgcat"
	"github.com/park285/chess-area/internal/obslog"
	"github.com/park285/chess-area/internal/server"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := area.Deps{}

	// Snapshot store (optional)
	if cfg.RedisURL != "" {
		ictx, cancel := context.WithTimeout(ctx, 5*time.Second)
		store, err := area.NewRedisStoreFromURL(ictx, cfg.RedisURL, cfg.SnapshotTTL())
		cancel()
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer func() { _ = store.Close() }()
		deps.Store = store
	} else {
		obslog.L().Warn("snapshot_store_disabled", zap.String("reason", "REDIS_URL not set"))
	}

	// Result repository: postgres when configured, memory otherwise
	if cfg.DatabaseURL != "" {
		repo, err := history.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("result repo init error: %v", err)
		}
		defer func() { _ = repo.Close() }()
		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = repo.Migrate(mctx)
		cancel()
		if err != nil {
			log.Fatalf("result repo migrate error: %v", err)
		}
		deps.Results = repo
	} else {
		obslog.L().Warn("result_repo_in_memory", zap.String("reason", "DATABASE_URL not set"))
		deps.Results = history.NewMemoryRepository()
	}

	reg := area.NewRegistry(cfg.AllowedAreas, deps)
	api := server.NewAPI(reg, deps.Results, cat, cfg.HistoryLimit)
	ws := server.NewWSHandler(reg, cat, cfg.PingInterval)

	obslog.L().Info("chess_server_start",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("ws_addr", cfg.WSAddr),
		zap.Strings("allowed_areas", cfg.AllowedAreas),
	)
	if err := server.New(cfg.HTTPAddr, cfg.WSAddr, api, ws).Run(ctx); err != nil {
		obslog.L().Error("chess_server_stopped", zap.Error(err))
		exitCode = 1
		return
	}
	obslog.L().Info("chess_server_stopped")
}
