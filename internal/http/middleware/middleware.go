// Package middleware wires the cross-cutting HTTP concerns: CORS, request
// IDs, health checks, optional API key auth, and rate limiting.
package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"github.com/treychaffin/TargetGenerator/internal/config"
	"github.com/treychaffin/TargetGenerator/internal/infra/logging"
	"github.com/treychaffin/TargetGenerator/internal/tokens"
)

// Deps are the shared dependencies the middleware stack needs.
type Deps struct {
	Config config.Config
	Tokens *tokens.Cache // nil disables API key handling
	Store  fiber.Storage // limiter backend
}

type tokenLimiters struct {
	sync.RWMutex
	handlers map[int]fiber.Handler
}

// Register attaches the global middleware stack to the app.
func Register(app *fiber.App, deps Deps) {
	cfg := deps.Config

	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New())

	if deps.Tokens != nil {
		app.Use(keyauth.New(keyauth.Config{
			KeyLookup:  "header:X-API-Key",
			ContextKey: "api_key",
			Validator: func(c *fiber.Ctx, key string) (bool, error) {
				// Provide a clear signal when the token store is not loaded yet.
				if !deps.Tokens.Ready() {
					return false, tokens.ErrStoreNotReady
				}
				if !deps.Tokens.Validate(key) {
					return false, tokens.ErrInvalidAPIKey
				}
				return true, nil
			},
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions || c.Get("X-API-Key") == ""
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				// Keyauth can call ErrorHandler with a nil error.
				status := fiber.StatusUnauthorized
				if err == nil {
					err = fiber.ErrUnauthorized
				}
				if err == tokens.ErrStoreNotReady {
					status = fiber.StatusServiceUnavailable
				}
				return c.Status(status).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    status,
						"message": err.Error(),
					},
				})
			},
		}))

		app.Use(tokenRateLimit(cfg, deps))
	}

	if cfg.RateLimiter.EnableUserLimiter && cfg.RateLimiter.UserLimit > 0 {
		app.Use(userRateLimit(cfg, deps.Store))
	}

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = c.GetRespHeader("X-Request-ID")
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}

// tokenRateLimit applies per-token sliding-window limits using the limit
// provisioned for the token. Limiter handlers are cached per limit value.
func tokenRateLimit(cfg config.Config, deps Deps) fiber.Handler {
	limiters := &tokenLimiters{handlers: make(map[int]fiber.Handler)}

	get := func(limit int) fiber.Handler {
		limiters.RLock()
		h, ok := limiters.handlers[limit]
		limiters.RUnlock()
		if ok {
			return h
		}

		h = limiter.New(limiter.Config{
			Max:               limit,
			Expiration:        cfg.RateLimiter.Interval,
			LimiterMiddleware: limiter.SlidingWindow{},
			Storage:           deps.Store,
			KeyGenerator: func(c *fiber.Ctx) string {
				if token, ok := c.Locals("api_key").(string); ok {
					return token
				}
				return ""
			},
			LimitReached: func(c *fiber.Ctx) error {
				token, _ := c.Locals("api_key").(string)
				logging.Warn("Rate limit exceeded", "token", token, "path", c.Path())
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    fiber.StatusTooManyRequests,
						"message": "Too Many Requests",
					},
				})
			},
		})

		limiters.Lock()
		limiters.handlers[limit] = h
		limiters.Unlock()
		return h
	}

	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("api_key").(string)
		if !ok || token == "" {
			return c.Next()
		}
		limit := deps.Tokens.RateLimit(token)
		if limit == 0 {
			return c.Next()
		}
		return get(limit)(c)
	}
}

// userRateLimit limits anonymous clients, keyed by a hash of their address
// and user agent.
func userRateLimit(cfg config.Config, store fiber.Storage) fiber.Handler {
	clientKey := func(c *fiber.Ctx) string {
		sum := sha256.Sum256([]byte(c.IP() + c.Get("User-Agent")))
		return hex.EncodeToString(sum[:])
	}

	userLimiter := limiter.New(limiter.Config{
		Max:               cfg.RateLimiter.UserLimit,
		Expiration:        cfg.RateLimiter.Interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           store,
		KeyGenerator:      clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			logging.Warn("Rate limit exceeded", "user", clientKey(c), "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusTooManyRequests,
					"message": "Too Many Requests",
				},
			})
		},
	})

	return func(c *fiber.Ctx) error {
		// Requests authenticated via X-API-Key already went through the
		// token limiter.
		if token, ok := c.Locals("api_key").(string); ok && token != "" {
			return c.Next()
		}
		return userLimiter(c)
	}
}
