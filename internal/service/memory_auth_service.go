package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/authn"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/tokenstore"
)

// MemoryUser seeds an account into the in-memory auth service.
type MemoryUser struct {
	ID       string
	Email    string
	Password string
	Role     string
	Phone    *string
}

type memoryAccount struct {
	user models.User
	hash string
}

type memoryAuthService struct {
	mu        sync.RWMutex
	accounts  map[string]memoryAccount
	tokens    tokenstore.Store
	issuer    *authn.Issuer
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMemoryAuthService returns an AuthService that keeps accounts in process memory.
// It is used for demos and tests that should not need a backend.
func NewMemoryAuthService(tokens tokenstore.Store, issuer *authn.Issuer, validate *validator.Validate, logger zerolog.Logger, seed ...MemoryUser) (AuthService, error) {
	svc := &memoryAuthService{
		accounts:  make(map[string]memoryAccount),
		tokens:    tokens,
		issuer:    issuer,
		validator: validate,
		logger:    logger.With().Str("component", "memory_auth_service").Logger(),
	}

	for _, account := range seed {
		if _, err := svc.add(account); err != nil {
			return nil, fmt.Errorf("seed %s: %w", account.Email, err)
		}
	}
	return svc, nil
}

func (s *memoryAuthService) add(account MemoryUser) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	hash, err := authn.HashPassword(account.Password)
	if err != nil {
		return models.User{}, err
	}

	id := account.ID
	if id == "" {
		id = uuid.NewString()
	}
	role := account.Role
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()
	user := models.User{ID: id, Email: email, Phone: account.Phone, Role: role, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return models.User{}, &apperror.Error{Kind: apperror.KindAPI, Code: "EMAIL_TAKEN", Message: "Email is already registered", Status: 409}
	}
	s.accounts[email] = memoryAccount{user: user, hash: hash}
	return user, nil
}

func (s *memoryAuthService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return dto.AuthResponse{}, err
	}

	s.mu.RLock()
	account, ok := s.accounts[strings.ToLower(strings.TrimSpace(payload.Email))]
	s.mu.RUnlock()
	if !ok || !authn.CheckPassword(account.hash, payload.Password) {
		return dto.AuthResponse{}, &apperror.Error{Kind: apperror.KindAuth, Message: "Invalid email or password", Status: 401}
	}
	return s.establish(ctx, account.user)
}

func (s *memoryAuthService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.add(MemoryUser{Email: payload.Email, Password: payload.Password, Phone: payload.Phone})
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return s.establish(ctx, user)
}

func (s *memoryAuthService) CurrentUser(ctx context.Context) (models.User, error) {
	claims, err := s.currentClaims(ctx)
	if err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.user.ID == claims.UserID {
			return account.user, nil
		}
	}
	return models.User{}, &apperror.Error{Kind: apperror.KindNotFound, Message: "User not found", Status: 404}
}

func (s *memoryAuthService) Refresh(ctx context.Context) (dto.AuthResponse, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return s.establish(ctx, user)
}

func (s *memoryAuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return apperror.From(fmt.Errorf("clear token: %w", err))
	}
	return nil
}

func (s *memoryAuthService) AdoptToken(ctx context.Context, token string) error {
	if token == "" {
		return apperror.Validation("token is required", nil)
	}
	if _, err := s.issuer.Parse(token); err != nil {
		return &apperror.Error{Kind: apperror.KindAuth, Message: "Session expired, please sign in again", Err: err}
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return apperror.From(fmt.Errorf("store token: %w", err))
	}
	return nil
}

func (s *memoryAuthService) currentClaims(ctx context.Context) (authn.Claims, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return authn.Claims{}, apperror.From(fmt.Errorf("read token: %w", err))
	}
	if token == "" {
		return authn.Claims{}, apperror.New(apperror.KindAuth, "Not signed in")
	}

	claims, err := s.issuer.Parse(token)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidToken) {
			if clearErr := s.tokens.Clear(ctx); clearErr != nil {
				s.logger.Warn().Err(clearErr).Msg("failed to clear rejected token")
			}
		}
		return authn.Claims{}, &apperror.Error{Kind: apperror.KindAuth, Message: "Session expired, please sign in again", Status: 401, Err: err}
	}
	return claims, nil
}

func (s *memoryAuthService) establish(ctx context.Context, user models.User) (dto.AuthResponse, error) {
	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponse{}, apperror.From(err)
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return dto.AuthResponse{}, apperror.From(fmt.Errorf("store token: %w", err))
	}

	s.logger.Info().Str("user_id", user.ID).Msg("session established")
	return dto.AuthResponse{Token: token, User: user}, nil
}
