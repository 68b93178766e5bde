package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opBadgeCatalog = "BADGE_CATALOG"
	opBadgeEarned  = "BADGE_EARNED"
)

// BadgeState is the badge catalog and the badges a user has earned.
type BadgeState struct {
	Catalog []models.Badge
	Earned  []models.UserBadge
}

// BadgeStore tracks badges.
type BadgeStore struct {
	*Store[BadgeState]
	badges   service.BadgeService
	notifier Notifier
}

// NewBadgeStore builds the badge container.
func NewBadgeStore(badges service.BadgeService, notifier Notifier, logger zerolog.Logger) *BadgeStore {
	return &BadgeStore{
		Store:    New("badges", func() BadgeState { return BadgeState{} }, reduceBadges, logger),
		badges:   badges,
		notifier: notifier,
	}
}

// FetchCatalog loads every badge that can be earned.
func (s *BadgeStore) FetchCatalog(ctx context.Context) ([]models.Badge, error) {
	return Run(ctx, s.Store, s.notifier, opBadgeCatalog, "catalog", s.badges.List)
}

// FetchEarned loads the badges earned by userID.
func (s *BadgeStore) FetchEarned(ctx context.Context, userID string) ([]models.UserBadge, error) {
	return Run(ctx, s.Store, s.notifier, opBadgeEarned, "earned", func(ctx context.Context) ([]models.UserBadge, error) {
		return s.badges.ListByUser(ctx, userID)
	})
}

func reduceBadges(state BadgeState, action Action) BadgeState {
	switch action.Type {
	case opBadgeCatalog + SuffixSuccess:
		state.Catalog = action.Payload.([]models.Badge)
	case opBadgeEarned + SuffixSuccess:
		state.Earned = action.Payload.([]models.UserBadge)
	}
	return state
}
