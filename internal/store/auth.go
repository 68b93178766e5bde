package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opLogin       = "LOGIN"
	opRegister    = "REGISTER"
	opCurrentUser = "CURRENT_USER"
	opRefresh     = "REFRESH"
	slotSession   = "session"
)

// AuthState is the signed-in user.
type AuthState struct {
	User            *models.User
	IsAuthenticated bool
}

// AuthStore tracks the session.
type AuthStore struct {
	*Store[AuthState]
	auth     service.AuthService
	notifier Notifier
}

// NewAuthStore builds the auth container.
func NewAuthStore(auth service.AuthService, notifier Notifier, logger zerolog.Logger) *AuthStore {
	return &AuthStore{
		Store:    New("auth", func() AuthState { return AuthState{} }, reduceAuth, logger),
		auth:     auth,
		notifier: notifier,
	}
}

// Login signs in with email and password.
func (s *AuthStore) Login(ctx context.Context, payload dto.LoginRequest) (models.User, error) {
	resp, err := Run(ctx, s.Store, s.notifier, opLogin, slotSession, func(ctx context.Context) (dto.AuthResponse, error) {
		return s.auth.Login(ctx, payload)
	})
	return resp.User, err
}

// Register creates an account and signs in.
func (s *AuthStore) Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error) {
	resp, err := Run(ctx, s.Store, s.notifier, opRegister, slotSession, func(ctx context.Context) (dto.AuthResponse, error) {
		return s.auth.Register(ctx, payload)
	})
	return resp.User, err
}

// LoadCurrentUser rehydrates the user from the stored token.
func (s *AuthStore) LoadCurrentUser(ctx context.Context) (models.User, error) {
	return Run(ctx, s.Store, s.notifier, opCurrentUser, slotSession, s.auth.CurrentUser)
}

// Refresh exchanges the stored token for a new one.
func (s *AuthStore) Refresh(ctx context.Context) (models.User, error) {
	resp, err := Run(ctx, s.Store, s.notifier, opRefresh, slotSession, s.auth.Refresh)
	return resp.User, err
}

// AdoptToken persists a token obtained elsewhere and loads its user.
func (s *AuthStore) AdoptToken(ctx context.Context, token string) (models.User, error) {
	if err := s.auth.AdoptToken(ctx, token); err != nil {
		seq := s.Begin(opCurrentUser, slotSession)
		Fail(ctx, s.Store, s.notifier, opCurrentUser, slotSession, seq, err)
		return models.User{}, err
	}
	return s.LoadCurrentUser(ctx)
}

// Logout ends the session server-side when possible and always resets the container.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)
	s.Reset()
	return err
}

func reduceAuth(state AuthState, action Action) AuthState {
	switch action.Type {
	case opLogin + SuffixSuccess, opRegister + SuffixSuccess, opRefresh + SuffixSuccess:
		resp := action.Payload.(dto.AuthResponse)
		user := resp.User
		return AuthState{User: &user, IsAuthenticated: true}
	case opCurrentUser + SuffixSuccess:
		user := action.Payload.(models.User)
		return AuthState{User: &user, IsAuthenticated: true}
	case opCurrentUser + SuffixError, opRefresh + SuffixError:
		if apperror.IsKind(action.Err, apperror.KindAuth) {
			return AuthState{}
		}
	}
	return state
}
