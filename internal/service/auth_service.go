package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/tokenstore"
)

// AuthService signs users in and out and owns the persisted bearer token.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	CurrentUser(ctx context.Context) (models.User, error)
	Refresh(ctx context.Context) (dto.AuthResponse, error)
	Logout(ctx context.Context) error
	// AdoptToken stores a token obtained outside the service, e.g. from an OAuth exchange.
	AdoptToken(ctx context.Context, token string) error
}

type authService struct {
	api       apiclient.Requester
	tokens    tokenstore.Store
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAuthService constructs the REST-backed auth service.
func NewAuthService(api apiclient.Requester, tokens tokenstore.Store, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		api:       api,
		tokens:    tokens,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/kultura-go/internal/service/auth"),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return dto.AuthResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "auth.login", trace.WithAttributes(attribute.String("auth.email", payload.Email)))
	defer span.End()

	env := s.api.Do(spanCtx, http.MethodPost, "/auth/login", payload, apiclient.WithoutAuth())
	if env.Status == http.StatusUnauthorized {
		return dto.AuthResponse{}, &apperror.Error{Kind: apperror.KindAuth, Message: "Invalid email or password", Status: env.Status, Code: env.Error}
	}
	return s.persist(spanCtx, env)
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return dto.AuthResponse{}, err
	}

	env := s.api.Do(ctx, http.MethodPost, "/auth/register", payload, apiclient.WithoutAuth())
	return s.persist(ctx, env)
}

func (s *authService) CurrentUser(ctx context.Context) (models.User, error) {
	return apiclient.Decode[models.User](s.api.Do(ctx, http.MethodGet, "/auth/me", nil))
}

func (s *authService) Refresh(ctx context.Context) (dto.AuthResponse, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return dto.AuthResponse{}, apperror.From(fmt.Errorf("read token: %w", err))
	}
	if token == "" {
		return dto.AuthResponse{}, apperror.New(apperror.KindAuth, "Not signed in")
	}

	env := s.api.Do(ctx, http.MethodPost, "/auth/refresh", dto.RefreshRequest{Token: token})
	return s.persist(ctx, env)
}

func (s *authService) Logout(ctx context.Context) error {
	env := s.api.Do(ctx, http.MethodPost, "/auth/logout", nil)
	if err := env.Err(); err != nil {
		s.logger.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return apperror.From(fmt.Errorf("clear token: %w", err))
	}
	return nil
}

func (s *authService) AdoptToken(ctx context.Context, token string) error {
	if token == "" {
		return apperror.Validation("token is required", nil)
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return apperror.From(fmt.Errorf("store token: %w", err))
	}
	return nil
}

func (s *authService) persist(ctx context.Context, env apiclient.Envelope) (dto.AuthResponse, error) {
	response, err := apiclient.Decode[dto.AuthResponse](env)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if response.Token == "" {
		return dto.AuthResponse{}, &apperror.Error{Kind: apperror.KindAPI, Message: "missing token in auth response", Status: env.Status}
	}
	if err := s.tokens.Set(ctx, response.Token); err != nil {
		return dto.AuthResponse{}, apperror.From(fmt.Errorf("store token: %w", err))
	}

	s.logger.Info().Str("user_id", response.User.ID).Msg("session established")
	return response, nil
}
