package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/middleware"
	"github.com/noah-isme/kultura-go/internal/service"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// requestError is a failure that maps directly onto an error envelope.
type requestError struct {
	status  int
	code    string
	message string
	details interface{}
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{status: fiber.StatusBadRequest, code: utils.CodeBadRequest, message: message}
}

func forbidden(message string) error {
	return &requestError{status: fiber.StatusForbidden, code: utils.CodeForbidden, message: message}
}

func unauthorized(message string) error {
	return &requestError{status: fiber.StatusUnauthorized, code: utils.CodeUnauthorized, message: message}
}

func notFound(message string) error {
	return &requestError{status: fiber.StatusNotFound, code: utils.CodeNotFound, message: message}
}

func conflict(message string) error {
	return &requestError{status: fiber.StatusConflict, code: utils.CodeConflict, message: message}
}

// parseBody decodes the JSON body into payload and validates it.
func parseBody(c *fiber.Ctx, validate *validator.Validate, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return badRequest("invalid payload")
	}
	return validateStruct(validate, payload)
}

func validateStruct(validate *validator.Validate, payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return badRequest("invalid payload")
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = service.FieldMessage(fe)
	}
	return &requestError{
		status:  fiber.StatusBadRequest,
		code:    utils.CodeValidation,
		message: service.FieldMessage(validationErrors[0]),
		details: details,
	}
}

// respondError writes err as an envelope. Missing records become 404s naming resource.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, resource string) error {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return utils.Fail(c, reqErr.status, reqErr.code, reqErr.message, reqErr.details)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.Fail(c, fiber.StatusNotFound, utils.CodeNotFound, resource+" not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "request cancelled")
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequest("invalid " + key)
	}
	return parsed, nil
}

func parseQueryBool(c *fiber.Ctx, key string) (*bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, badRequest("invalid " + key)
	}
	return &parsed, nil
}

func pathParam(c *fiber.Ctx, key string) (string, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return "", badRequest(key + " required")
	}
	return value, nil
}

func currentUserID(c *fiber.Ctx) (string, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return "", unauthorized("user not authenticated")
	}
	return userID, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// textSanitizer strips all markup from user-supplied text.
func textSanitizer() *bluemonday.Policy {
	return bluemonday.StrictPolicy()
}

func sanitizeText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(policy.Sanitize(value))
}

func deletedPayload(id string) fiber.Map {
	return fiber.Map{"id": id, "deleted": true}
}
