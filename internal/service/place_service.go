package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
)

// ProvinceService reads the province lookup table.
type ProvinceService interface {
	List(ctx context.Context) ([]models.Province, error)
	Get(ctx context.Context, id string) (models.Province, error)
}

// CityService reads cities, optionally filtered by province.
type CityService interface {
	List(ctx context.Context, provinceID string) ([]models.City, error)
	Get(ctx context.Context, id string) (models.City, error)
}

// LocationService reads and registers venues.
type LocationService interface {
	List(ctx context.Context, cityID string) ([]models.Location, error)
	Get(ctx context.Context, id string) (models.Location, error)
	Create(ctx context.Context, payload dto.LocationCreateRequest) (models.Location, error)
}

type provinceService struct {
	api apiclient.Requester
}

// NewProvinceService constructs the province service.
func NewProvinceService(api apiclient.Requester) ProvinceService {
	return &provinceService{api: api}
}

func (s *provinceService) List(ctx context.Context) ([]models.Province, error) {
	return apiclient.Decode[[]models.Province](s.api.Do(ctx, http.MethodGet, "/provinces", nil))
}

func (s *provinceService) Get(ctx context.Context, id string) (models.Province, error) {
	return apiclient.Decode[models.Province](s.api.Do(ctx, http.MethodGet, "/provinces/"+url.PathEscape(id), nil))
}

type cityService struct {
	api apiclient.Requester
}

// NewCityService constructs the city service.
func NewCityService(api apiclient.Requester) CityService {
	return &cityService{api: api}
}

func (s *cityService) List(ctx context.Context, provinceID string) ([]models.City, error) {
	var opts []apiclient.RequestOption
	if provinceID != "" {
		opts = append(opts, apiclient.WithQuery(url.Values{"province_id": {provinceID}}))
	}
	return apiclient.Decode[[]models.City](s.api.Do(ctx, http.MethodGet, "/cities", nil, opts...))
}

func (s *cityService) Get(ctx context.Context, id string) (models.City, error) {
	return apiclient.Decode[models.City](s.api.Do(ctx, http.MethodGet, "/cities/"+url.PathEscape(id), nil))
}

type locationService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLocationService constructs the location service.
func NewLocationService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) LocationService {
	return &locationService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "location_service").Logger(),
	}
}

func (s *locationService) List(ctx context.Context, cityID string) ([]models.Location, error) {
	var opts []apiclient.RequestOption
	if cityID != "" {
		opts = append(opts, apiclient.WithQuery(url.Values{"city_id": {cityID}}))
	}
	return apiclient.Decode[[]models.Location](s.api.Do(ctx, http.MethodGet, "/locations", nil, opts...))
}

func (s *locationService) Get(ctx context.Context, id string) (models.Location, error) {
	return apiclient.Decode[models.Location](s.api.Do(ctx, http.MethodGet, "/locations/"+url.PathEscape(id), nil))
}

func (s *locationService) Create(ctx context.Context, payload dto.LocationCreateRequest) (models.Location, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return models.Location{}, err
	}
	location, err := apiclient.Decode[models.Location](s.api.Do(ctx, http.MethodPost, "/locations", payload))
	if err != nil {
		return models.Location{}, err
	}
	s.logger.Info().Str("location_id", location.ID).Str("city_id", location.CityID).Msg("location created")
	return location, nil
}
