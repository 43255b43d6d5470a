package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/treychaffin/TargetGenerator/internal/config"
	"github.com/treychaffin/TargetGenerator/internal/http/server"
	"github.com/treychaffin/TargetGenerator/internal/infra/logging"
	"github.com/treychaffin/TargetGenerator/internal/infra/postgres"
	"github.com/treychaffin/TargetGenerator/internal/infra/ratelimit"
	"github.com/treychaffin/TargetGenerator/internal/tokens"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	logging.SetLogLevel(cfg.Logger.Level)

	store := ratelimit.NewStore(ratelimit.RedisConfig{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.RateLimitDB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The token store is optional. Without Postgres the service runs
	// anonymous-only and keyed requests are rejected as not ready.
	var cache *tokens.Cache
	if cfg.Auth.Postgres.Host != "" {
		cache = tokens.NewCache()
		repo, err := postgres.NewTokenRepository(cfg.Auth.Postgres)
		if err != nil {
			logging.Error("Failed to open token store", "error", err)
		} else {
			reloader := tokens.NewReloader(repo, cache, cfg.Auth.ReloadInterval)
			if err := reloader.LoadOnce(ctx); err != nil {
				logging.Error("Failed to load API tokens", "error", err)
			}
			go reloader.Run(ctx, func(err error) {
				logging.Error("Failed to reload API tokens", "error", err)
			})
		}
	}

	app := server.New(server.Deps{Config: cfg, Tokens: cache, Store: store})

	idleConnsClosed := make(chan struct{})
	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
