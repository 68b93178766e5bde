package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kultura-go/internal/models"
)

// EventFilter narrows the event listing.
type EventFilter struct {
	CityID      string
	CreatorID   string
	KidFriendly *bool
	Search      string
	Page        int
	PageSize    int
}

// EventRepository persists events.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error)
	Get(ctx context.Context, id string) (models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs a GORM-backed repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})
	if filter.CityID != "" {
		query = query.Where("location_id IN (?)", r.db.Model(&models.Location{}).Select("id").Where("city_id = ?", filter.CityID))
	}
	if filter.CreatorID != "" {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.KidFriendly != nil {
		query = query.Where("is_kid_friendly = ?", *filter.KidFriendly)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := normalizeLimit(filter.PageSize, 20)

	events := []models.Event{}
	if err := query.
		Preload("Location.City").
		Preload("Creator").
		Order("start_date ASC, id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	events := []models.Event{}
	if err := r.db.WithContext(ctx).
		Preload("Location.City").
		Where("end_date >= ?", from).
		Order("start_date ASC").
		Limit(normalizeLimit(limit, 50)).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Get(ctx context.Context, id string) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).
		Preload("Location.City.Province").
		Preload("Creator").
		First(&event, "id = ?", id).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
