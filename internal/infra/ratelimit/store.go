// Package ratelimit provides the storage backend for the HTTP rate
// limiters.
package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	"github.com/treychaffin/TargetGenerator/internal/infra/logging"
)

// RedisConfig selects the shared Redis backend. An empty Addr keeps the
// limiter state in process memory.
type RedisConfig struct {
	Addr string
	DB   int
}

// NewStore returns a limiter storage backed by Redis when configured and
// reachable, falling back to in-process memory otherwise. The fallback
// keeps the service usable on a single instance without Redis.
func NewStore(cfg RedisConfig) fiber.Storage {
	store := fiber.Storage(memoryStorage.New())
	if cfg.Addr == "" {
		return store
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
			}
		}()
		store = redisStorage.New(redisStorage.Config{
			Addrs:    []string{cfg.Addr},
			Database: cfg.DB,
		})
		logging.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.DB)
	}()

	return store
}
