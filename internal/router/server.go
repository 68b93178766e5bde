package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/authn"
	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/handler"
	"github.com/noah-isme/kultura-go/internal/middleware"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/service"
	"github.com/noah-isme/kultura-go/internal/utils"
	"github.com/noah-isme/kultura-go/pkg/ai"
)

// DefaultRateLimit is the per-caller request budget per minute.
const DefaultRateLimit = 600

// ServerOptions tunes NewServer.
type ServerOptions struct {
	Responder ai.Responder
	RateLimit int
	AccessLog bool
}

// NewServer assembles the dev backend: repositories, handlers, middleware and routes.
func NewServer(cfg config.Config, db *gorm.DB, logger zerolog.Logger, opts ServerOptions) *fiber.App {
	responder := opts.Responder
	if responder == nil {
		responder = ai.NewEchoResponder()
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = DefaultRateLimit
	}

	validate := service.NewValidator()
	issuer := authn.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	users := repository.NewUserRepository(db)
	places := repository.NewPlaceRepository(db)
	events := repository.NewEventRepository(db)
	discussions := repository.NewDiscussionRepository(db)
	badges := repository.NewBadgeRepository(db)
	sessions := repository.NewAiRepository(db)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
			return utils.SendError(c, status, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: opts.AccessLog})
	Register(app, cfg, Dependencies{
		AuthHandler:       handler.NewAuthHandler(users, issuer, validate, logger),
		ProfileHandler:    handler.NewProfileHandler(users, validate, logger),
		EventHandler:      handler.NewEventHandler(events, places, discussions, validate, logger),
		PlaceHandler:      handler.NewPlaceHandler(places, validate, logger),
		DiscussionHandler: handler.NewDiscussionHandler(discussions, events, validate, logger),
		BadgeHandler:      handler.NewBadgeHandler(badges, users, validate, logger),
		SearchHandler:     handler.NewSearchHandler(events, places, validate, logger),
		AiHandler:         handler.NewAiHandler(sessions, events, responder, validate, logger),
		JWTMiddleware:     middleware.JWTProtected(issuer),
		RateLimit:         opts.RateLimit,
	})

	return app
}
