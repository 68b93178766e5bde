package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
)

// EventPage is one page of the event listing.
type EventPage struct {
	Events     []models.Event
	Pagination models.Pagination
}

// EventService exposes event browsing and creator-side mutations.
type EventService interface {
	List(ctx context.Context, query dto.EventQuery) (EventPage, error)
	Trending(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id string) (models.Event, error)
	Create(ctx context.Context, payload dto.EventCreateRequest) (models.Event, error)
	Update(ctx context.Context, id string, payload dto.EventUpdateRequest) (models.Event, error)
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventService constructs the event service.
func NewEventService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) List(ctx context.Context, query dto.EventQuery) (EventPage, error) {
	if err := validatePayload(s.validator, query); err != nil {
		return EventPage{}, err
	}

	env := s.api.Do(ctx, http.MethodGet, "/events", nil, apiclient.WithQuery(eventQueryValues(query)))
	events, err := apiclient.Decode[[]models.Event](env)
	if err != nil {
		return EventPage{}, err
	}

	page := EventPage{Events: events}
	if pagination := env.Pagination(); pagination != nil {
		page.Pagination = *pagination
	} else {
		page.Pagination = models.NewPagination(int64(len(events)), query.Page, max(query.PerPage, len(events)))
	}
	return page, nil
}

func (s *eventService) Trending(ctx context.Context) ([]models.Event, error) {
	return apiclient.Decode[[]models.Event](s.api.Do(ctx, http.MethodGet, "/events/trending", nil))
}

func (s *eventService) Get(ctx context.Context, id string) (models.Event, error) {
	if id == "" {
		return models.Event{}, apperror.Validation("event id is required", nil)
	}
	return apiclient.Decode[models.Event](s.api.Do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil))
}

func (s *eventService) Create(ctx context.Context, payload dto.EventCreateRequest) (models.Event, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return models.Event{}, err
	}

	event, err := apiclient.Decode[models.Event](s.api.Do(ctx, http.MethodPost, "/events", payload))
	if err != nil {
		return models.Event{}, err
	}
	s.logger.Info().Str("event_id", event.ID).Msg("event created")
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, payload dto.EventUpdateRequest) (models.Event, error) {
	if id == "" {
		return models.Event{}, apperror.Validation("event id is required", nil)
	}
	if err := validatePayload(s.validator, payload); err != nil {
		return models.Event{}, err
	}
	return apiclient.Decode[models.Event](s.api.Do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), payload))
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.Validation("event id is required", nil)
	}
	if err := s.api.Do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil).Err(); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

func eventQueryValues(query dto.EventQuery) url.Values {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.CityID != "" {
		values.Set("city_id", query.CityID)
	}
	if query.CreatorID != "" {
		values.Set("creator_id", query.CreatorID)
	}
	if query.KidFriendly != nil {
		values.Set("kid_friendly", strconv.FormatBool(*query.KidFriendly))
	}
	if query.Search != "" {
		values.Set("q", query.Search)
	}
	return values
}
