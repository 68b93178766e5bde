package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/handler"
	"github.com/noah-isme/kultura-go/internal/middleware"
	"github.com/noah-isme/kultura-go/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ProfileHandler    *handler.ProfileHandler
	EventHandler      *handler.EventHandler
	PlaceHandler      *handler.PlaceHandler
	DiscussionHandler *handler.DiscussionHandler
	BadgeHandler      *handler.BadgeHandler
	SearchHandler     *handler.SearchHandler
	AiHandler         *handler.AiHandler
	JWTMiddleware     fiber.Handler
	RateLimit         int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	if deps.RateLimit > 0 {
		api.Use(middleware.RateLimit("api", deps.RateLimit, time.Minute))
	}
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	protect := deps.JWTMiddleware
	if protect == nil {
		protect = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), protect)
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api, protect)
	}
	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"), protect)
	}
	if deps.PlaceHandler != nil {
		deps.PlaceHandler.Register(api, protect)
	}
	if deps.DiscussionHandler != nil {
		deps.DiscussionHandler.Register(api, protect)
	}
	if deps.BadgeHandler != nil {
		deps.BadgeHandler.Register(api.Group("/badges"), protect)
	}
	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(api.Group("/search"))
	}
	if deps.AiHandler != nil {
		deps.AiHandler.Register(api.Group("/ai"), protect)
	}
}
