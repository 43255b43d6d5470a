// Package server assembles the Fiber application.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/treychaffin/TargetGenerator/internal/config"
	"github.com/treychaffin/TargetGenerator/internal/http/handlers"
	"github.com/treychaffin/TargetGenerator/internal/http/middleware"
	"github.com/treychaffin/TargetGenerator/internal/infra/logging"
	"github.com/treychaffin/TargetGenerator/internal/tokens"
)

// Deps carries everything the app needs at construction time.
type Deps struct {
	Config config.Config
	Tokens *tokens.Cache // nil when no token store is configured
	Store  fiber.Storage // limiter backend
}

// New creates and configures a new Fiber app instance.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               deps.Config.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	middleware.Register(app, middleware.Deps{
		Config: deps.Config,
		Tokens: deps.Tokens,
		Store:  deps.Store,
	})
	registerRoutes(app, deps)

	// Ensure all unmatched routes return a JSON 404.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// registerRoutes mounts all route handlers to the app.
func registerRoutes(app *fiber.App, deps Deps) {
	svc := handlers.NewTargetService(deps.Config)

	app.Get("/", svc.HandleForm)
	app.Post("/targets", svc.HandleGenerate)

	app.Get("/ops/monitor", monitor.New())
}
