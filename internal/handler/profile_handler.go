package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// ProfileHandler serves the signed-in user's profile and public user lookups.
type ProfileHandler struct {
	users     repository.UserRepository
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:     users,
		validate:  validate,
		sanitizer: textSanitizer(),
		logger:    logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds the profile and user routes. Every route requires a session.
func (h *ProfileHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Get("/profile/me", protect, h.myProfile)
	router.Put("/profile/:id", protect, h.updateProfile)
	router.Get("/users/:id", protect, h.getUser)
}

func (h *ProfileHandler) myProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Profile")
	}

	profile, err := h.users.GetProfileByUserID(withRequestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Profile")
	}

	return utils.OK(c, profile, "Profile")
}

func (h *ProfileHandler) updateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Profile")
	}
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Profile")
	}

	var payload dto.ProfileUpdateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Profile")
	}

	ctx := withRequestContext(c)
	profile, err := h.users.GetProfile(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "Profile")
	}
	if profile.UserID != userID {
		return respondError(c, h.logger, forbidden("cannot edit another user's profile"), "Profile")
	}

	h.apply(&profile, payload)
	if err := h.users.UpdateProfile(ctx, &profile); err != nil {
		return respondError(c, h.logger, err, "Profile")
	}

	return utils.OK(c, profile, "profile updated")
}

func (h *ProfileHandler) apply(profile *models.UserProfile, payload dto.ProfileUpdateRequest) {
	if payload.Fullname != nil {
		profile.Fullname = sanitizeText(h.sanitizer, *payload.Fullname)
	}
	if payload.Bio != nil {
		bio := sanitizeText(h.sanitizer, *payload.Bio)
		profile.Bio = &bio
	}
	if payload.AvatarURL != nil {
		avatar := strings.TrimSpace(*payload.AvatarURL)
		profile.AvatarURL = &avatar
	}
	if payload.IdentityImageURL != nil {
		identity := strings.TrimSpace(*payload.IdentityImageURL)
		profile.IdentityImageURL = &identity
	}
}

func (h *ProfileHandler) getUser(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	user, err := h.users.FindByID(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	return utils.OK(c, user, "User")
}
