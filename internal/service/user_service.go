package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
)

// UserService reads and edits the signed-in user's profile.
type UserService interface {
	MyProfile(ctx context.Context) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, profileID string, payload dto.ProfileUpdateRequest) (models.UserProfile, error)
	UpdateAvatar(ctx context.Context, profileID, avatarURL string) (models.UserProfile, error)
	SubmitIdentity(ctx context.Context, profileID, imageURL string) (models.UserProfile, error)
	GetUser(ctx context.Context, id string) (models.User, error)
}

type userService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the profile service.
func NewUserService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) MyProfile(ctx context.Context) (models.UserProfile, error) {
	return apiclient.Decode[models.UserProfile](s.api.Do(ctx, http.MethodGet, "/profile/me", nil))
}

func (s *userService) UpdateProfile(ctx context.Context, profileID string, payload dto.ProfileUpdateRequest) (models.UserProfile, error) {
	if profileID == "" {
		return models.UserProfile{}, apperror.Validation("profile id is required", nil)
	}
	if err := validatePayload(s.validator, payload); err != nil {
		return models.UserProfile{}, err
	}
	return apiclient.Decode[models.UserProfile](s.api.Do(ctx, http.MethodPut, "/profile/"+url.PathEscape(profileID), payload))
}

func (s *userService) UpdateAvatar(ctx context.Context, profileID, avatarURL string) (models.UserProfile, error) {
	return s.UpdateProfile(ctx, profileID, dto.ProfileUpdateRequest{AvatarURL: &avatarURL})
}

func (s *userService) SubmitIdentity(ctx context.Context, profileID, imageURL string) (models.UserProfile, error) {
	profile, err := s.UpdateProfile(ctx, profileID, dto.ProfileUpdateRequest{IdentityImageURL: &imageURL})
	if err == nil {
		s.logger.Info().Str("profile_id", profileID).Msg("identity verification submitted")
	}
	return profile, err
}

func (s *userService) GetUser(ctx context.Context, id string) (models.User, error) {
	return apiclient.Decode[models.User](s.api.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil))
}
