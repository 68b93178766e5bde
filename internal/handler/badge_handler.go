package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/middleware"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// BadgeHandler serves the badge catalog and per-user awards.
type BadgeHandler struct {
	badges   repository.BadgeRepository
	users    repository.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewBadgeHandler constructs a badge handler.
func NewBadgeHandler(badges repository.BadgeRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) *BadgeHandler {
	return &BadgeHandler{
		badges:   badges,
		users:    users,
		validate: validate,
		logger:   logger.With().Str("component", "badge_handler").Logger(),
	}
}

// Register binds the badge routes. Awarding is reserved for admins.
func (h *BadgeHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Get("/", h.list)
	router.Get("/user/:userId", h.listByUser)
	router.Post("/award", protect, middleware.RequireRole(models.RoleAdmin), h.award)
}

func (h *BadgeHandler) list(c *fiber.Ctx) error {
	badges, err := h.badges.List(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "Badge")
	}
	return utils.OK(c, badges, "badges")
}

func (h *BadgeHandler) listByUser(c *fiber.Ctx) error {
	userID, err := pathParam(c, "userId")
	if err != nil {
		return respondError(c, h.logger, err, "Badge")
	}

	earned, err := h.badges.ListByUser(withRequestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Badge")
	}
	return utils.OK(c, earned, "user badges")
}

func (h *BadgeHandler) award(c *fiber.Ctx) error {
	var payload dto.BadgeAwardRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Badge")
	}

	ctx := withRequestContext(c)
	if _, err := h.users.FindByID(ctx, payload.UserID); err != nil {
		return respondError(c, h.logger, err, "User")
	}

	catalog, err := h.badges.List(ctx)
	if err != nil {
		return respondError(c, h.logger, err, "Badge")
	}
	known := false
	for _, badge := range catalog {
		if badge.ID == payload.BadgeID {
			known = true
			break
		}
	}
	if !known {
		return respondError(c, h.logger, notFound("Badge not found"), "Badge")
	}

	if err := h.badges.Award(ctx, payload.UserID, payload.BadgeID); err != nil {
		return respondError(c, h.logger, err, "Badge")
	}

	earned, err := h.badges.ListByUser(ctx, payload.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "Badge")
	}

	h.logger.Info().Str("user_id", payload.UserID).Str("badge_id", payload.BadgeID).Str("admin_id", middleware.UserID(c)).Msg("badge awarded")
	return utils.OK(c, earned, "badge awarded")
}
