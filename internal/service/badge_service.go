package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/models"
)

// BadgeService reads the badge catalog and per-user earned badges.
type BadgeService interface {
	List(ctx context.Context) ([]models.Badge, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error)
}

type badgeService struct {
	api apiclient.Requester
}

// NewBadgeService constructs the badge service.
func NewBadgeService(api apiclient.Requester) BadgeService {
	return &badgeService{api: api}
}

func (s *badgeService) List(ctx context.Context) ([]models.Badge, error) {
	return apiclient.Decode[[]models.Badge](s.api.Do(ctx, http.MethodGet, "/badges", nil))
}

func (s *badgeService) ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error) {
	return apiclient.Decode[[]models.UserBadge](s.api.Do(ctx, http.MethodGet, "/badges/user/"+url.PathEscape(userID), nil))
}
