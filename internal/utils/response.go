package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kultura-go/internal/models"
)

// Error codes written to the envelope's error field.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// Metadata carries pagination for list responses.
type Metadata struct {
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// APIResponse is the envelope every endpoint returns. Data is null on failure.
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
	Details  interface{} `json:"details,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// OK sends a 200 envelope.
func OK(c *fiber.Ctx, data interface{}, message string) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// Created sends a 201 envelope.
func Created(c *fiber.Ctx, data interface{}, message string) error {
	return SendSuccessWithStatus(c, fiber.StatusCreated, message, data)
}

// Paginated sends a 200 envelope with pagination metadata.
func Paginated(c *fiber.Ctx, data interface{}, pagination models.Pagination, message string) error {
	if message == "" {
		message = "success"
	}
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:  true,
		Data:     data,
		Message:  message,
		Metadata: &Metadata{Pagination: &pagination},
	})
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Fail sends a failed envelope with an error code and optional details.
func Fail(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}
	if code == "" {
		code = CodeForStatus(status)
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error:   code,
		Details: details,
	})
}

// SendError sends a failed envelope whose code is derived from status.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, "", message, nil)
}

// CodeForStatus maps an HTTP status to its default error code.
func CodeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeBadRequest
	case fiber.StatusUnprocessableEntity:
		return CodeValidation
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	case fiber.StatusTooManyRequests:
		return CodeTooManyRequests
	default:
		return CodeInternal
	}
}
