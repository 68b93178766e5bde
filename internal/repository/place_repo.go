package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kultura-go/internal/models"
)

// PlaceRepository reads provinces, cities and locations.
type PlaceRepository interface {
	ListProvinces(ctx context.Context) ([]models.Province, error)
	GetProvince(ctx context.Context, id string) (models.Province, error)
	ListCities(ctx context.Context, provinceID string) ([]models.City, error)
	GetCity(ctx context.Context, id string) (models.City, error)
	ListLocations(ctx context.Context, cityID string) ([]models.Location, error)
	GetLocation(ctx context.Context, id string) (models.Location, error)
	CreateLocation(ctx context.Context, location *models.Location) error
	SearchCities(ctx context.Context, query string, limit int) ([]models.City, error)
	SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error)
}

type placeRepository struct {
	db *gorm.DB
}

// NewPlaceRepository constructs a GORM-backed repository.
func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) ListProvinces(ctx context.Context) ([]models.Province, error) {
	provinces := []models.Province{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&provinces).Error; err != nil {
		return nil, err
	}
	return provinces, nil
}

func (r *placeRepository) GetProvince(ctx context.Context, id string) (models.Province, error) {
	var province models.Province
	if err := r.db.WithContext(ctx).First(&province, "id = ?", id).Error; err != nil {
		return models.Province{}, err
	}
	return province, nil
}

func (r *placeRepository) ListCities(ctx context.Context, provinceID string) ([]models.City, error) {
	query := r.db.WithContext(ctx).Preload("Province").Order("name ASC")
	if provinceID != "" {
		query = query.Where("province_id = ?", provinceID)
	}

	cities := []models.City{}
	if err := query.Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *placeRepository) GetCity(ctx context.Context, id string) (models.City, error) {
	var city models.City
	if err := r.db.WithContext(ctx).Preload("Province").First(&city, "id = ?", id).Error; err != nil {
		return models.City{}, err
	}
	return city, nil
}

func (r *placeRepository) ListLocations(ctx context.Context, cityID string) ([]models.Location, error) {
	query := r.db.WithContext(ctx).Preload("City").Order("name ASC")
	if cityID != "" {
		query = query.Where("city_id = ?", cityID)
	}

	locations := []models.Location{}
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *placeRepository) GetLocation(ctx context.Context, id string) (models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).Preload("City.Province").First(&location, "id = ?", id).Error; err != nil {
		return models.Location{}, err
	}
	return location, nil
}

func (r *placeRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(location).Error
}

func (r *placeRepository) SearchCities(ctx context.Context, query string, limit int) ([]models.City, error) {
	cities := []models.City{}
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", likePattern(query)).
		Order("name ASC").
		Limit(normalizeLimit(limit, 20)).
		Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *placeRepository) SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error) {
	pattern := likePattern(query)
	locations := []models.Location{}
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(normalizeLimit(limit, 20)).
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func likePattern(query string) string {
	escaped := strings.NewReplacer("%", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(query)))
	return "%" + escaped + "%"
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
