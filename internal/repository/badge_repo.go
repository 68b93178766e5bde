package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kultura-go/internal/models"
)

// BadgeRepository reads the badge catalog and records awards.
type BadgeRepository interface {
	List(ctx context.Context) ([]models.Badge, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error)
	Award(ctx context.Context, userID, badgeID string) error
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository constructs a GORM-backed repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	badges := []models.Badge{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error) {
	earned := []models.UserBadge{}
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&earned).Error; err != nil {
		return nil, err
	}
	return earned, nil
}

// Award grants a badge once; repeated awards are ignored.
func (r *badgeRepository) Award(ctx context.Context, userID, badgeID string) error {
	award := models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&award).Error
}
