package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/authn"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// AuthHandler issues and refreshes bearer tokens.
type AuthHandler struct {
	users    repository.UserRepository
	issuer   *authn.Issuer
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users repository.UserRepository, issuer *authn.Issuer, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		issuer:   issuer,
		validate: validate,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes. protect guards the routes that need a session.
func (h *AuthHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Post("/login", h.login)
	router.Post("/register", h.register)
	router.Get("/me", protect, h.me)
	router.Post("/refresh", protect, h.refresh)
	router.Post("/logout", protect, h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "User")
	}

	user, err := h.users.FindByEmail(withRequestContext(c), payload.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !authn.CheckPassword(user.PasswordHash, payload.Password)) {
		return respondError(c, h.logger, unauthorized("invalid email or password"), "User")
	}
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	return h.issue(c, fiber.StatusOK, "login successful", user)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "User")
	}

	ctx := withRequestContext(c)
	if _, err := h.users.FindByEmail(ctx, payload.Email); err == nil {
		return respondError(c, h.logger, conflict("email already registered"), "User")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.logger, err, "User")
	}

	hash, err := authn.HashPassword(payload.Password)
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	user := models.User{Email: payload.Email, Phone: payload.Phone, Role: models.RoleUser, PasswordHash: hash}
	profile := models.UserProfile{Fullname: strings.TrimSpace(payload.Fullname)}
	if err := h.users.CreateWithProfile(ctx, &user, &profile); err != nil {
		return respondError(c, h.logger, err, "User")
	}

	requestLogger(h.logger, c).Info().Str("user_id", user.ID).Msg("user registered")
	return h.issue(c, fiber.StatusCreated, "registration successful", user)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	user, err := h.users.FindByID(withRequestContext(c), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.logger, unauthorized("session user no longer exists"), "User")
	}
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	return utils.OK(c, user, "current user")
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	user, err := h.users.FindByID(withRequestContext(c), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.logger, unauthorized("session user no longer exists"), "User")
	}
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}

	return h.issue(c, fiber.StatusOK, "token refreshed", user)
}

// logout is a no-op for stateless tokens; the client drops its copy.
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	return utils.OK(c, fiber.Map{"logged_out": true}, "logged out")
}

func (h *AuthHandler) issue(c *fiber.Ctx, status int, message string, user models.User) error {
	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return respondError(c, h.logger, err, "User")
	}
	return utils.SendSuccessWithStatus(c, status, message, dto.AuthResponse{Token: token, User: user})
}
