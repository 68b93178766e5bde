package dto

import "github.com/noah-isme/kultura-go/internal/models"

// LoginRequest is the email/password credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// RegisterRequest creates a new account together with its profile.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Fullname string  `json:"fullname" validate:"required,min=2,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// RefreshRequest exchanges an existing token for a fresh one.
type RefreshRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
