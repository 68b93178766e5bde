package handler

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/middleware"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

const (
	defaultEventsPerPage = 20
	trendingLimit        = 10
	trendingWindow       = 50
)

// EventHandler serves the event catalogue.
type EventHandler struct {
	events      repository.EventRepository
	places      repository.PlaceRepository
	discussions repository.DiscussionRepository
	validate    *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEventHandler constructs an event handler.
func NewEventHandler(events repository.EventRepository, places repository.PlaceRepository, discussions repository.DiscussionRepository, validate *validator.Validate, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		events:      events,
		places:      places,
		discussions: discussions,
		validate:    validate,
		sanitizer:   textSanitizer(),
		logger:      logger.With().Str("component", "event_handler").Logger(),
		now:         time.Now,
	}
}

// Register binds the event routes. Reads are public; writes need a session.
func (h *EventHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Get("/", h.list)
	router.Get("/trending", h.trending)
	router.Get("/:id", h.get)
	router.Post("/", protect, h.create)
	router.Put("/:id", protect, h.update)
	router.Delete("/:id", protect, h.delete)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	query, err := h.parseQuery(c)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	events, total, err := h.events.List(withRequestContext(c), repository.EventFilter{
		CityID:      query.CityID,
		CreatorID:   query.CreatorID,
		KidFriendly: query.KidFriendly,
		Search:      query.Search,
		Page:        query.Page,
		PageSize:    query.PerPage,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	return utils.Paginated(c, events, models.NewPagination(total, query.Page, query.PerPage), "events")
}

func (h *EventHandler) parseQuery(c *fiber.Ctx) (dto.EventQuery, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.EventQuery{}, err
	}
	perPage, err := parseQueryInt(c, "per_page")
	if err != nil {
		return dto.EventQuery{}, err
	}
	kidFriendly, err := parseQueryBool(c, "kid_friendly")
	if err != nil {
		return dto.EventQuery{}, err
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultEventsPerPage
	}

	query := dto.EventQuery{
		Page:        page,
		PerPage:     perPage,
		CityID:      strings.TrimSpace(c.Query("city_id")),
		CreatorID:   strings.TrimSpace(c.Query("creator_id")),
		KidFriendly: kidFriendly,
		Search:      strings.TrimSpace(c.Query("q")),
	}
	if err := validateStruct(h.validate, query); err != nil {
		return dto.EventQuery{}, err
	}
	return query, nil
}

// trending ranks upcoming events by how many people joined their discussion.
func (h *EventHandler) trending(c *fiber.Ctx) error {
	ctx := withRequestContext(c)
	upcoming, err := h.events.ListUpcoming(ctx, h.now().UTC(), trendingWindow)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	ids := make([]string, 0, len(upcoming))
	for _, event := range upcoming {
		ids = append(ids, event.ID)
	}
	counts, err := h.discussions.ParticipantCounts(ctx, ids)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return counts[upcoming[i].ID] > counts[upcoming[j].ID]
	})
	if len(upcoming) > trendingLimit {
		upcoming = upcoming[:trendingLimit]
	}

	return utils.OK(c, upcoming, "trending events")
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	event, err := h.events.Get(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	return utils.OK(c, event, "Event")
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	var payload dto.EventCreateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	ctx := withRequestContext(c)
	if err := h.ensureLocation(c, payload.LocationID); err != nil {
		return respondError(c, h.logger, err, "Location")
	}

	event := models.Event{
		Name:          sanitizeText(h.sanitizer, payload.Name),
		Description:   sanitizeText(h.sanitizer, payload.Description),
		ImageURL:      strings.TrimSpace(payload.ImageURL),
		StartDate:     payload.StartDate.UTC(),
		EndDate:       payload.EndDate.UTC(),
		IsKidFriendly: payload.IsKidFriendly,
		LocationID:    payload.LocationID,
		CreatorID:     userID,
	}
	if err := h.events.Create(ctx, &event); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	created, err := h.events.Get(ctx, event.ID)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	requestLogger(h.logger, c).Info().Str("event_id", event.ID).Msg("event created")
	return utils.Created(c, created, "event created")
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	event, err := h.ownedEvent(c)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	var payload dto.EventUpdateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	if payload.LocationID != nil && *payload.LocationID != event.LocationID {
		if err := h.ensureLocation(c, *payload.LocationID); err != nil {
			return respondError(c, h.logger, err, "Location")
		}
		event.LocationID = *payload.LocationID
	}
	if payload.Name != nil {
		event.Name = sanitizeText(h.sanitizer, *payload.Name)
	}
	if payload.Description != nil {
		event.Description = sanitizeText(h.sanitizer, *payload.Description)
	}
	if payload.ImageURL != nil {
		event.ImageURL = strings.TrimSpace(*payload.ImageURL)
	}
	if payload.StartDate != nil {
		event.StartDate = payload.StartDate.UTC()
	}
	if payload.EndDate != nil {
		event.EndDate = payload.EndDate.UTC()
	}
	if payload.IsKidFriendly != nil {
		event.IsKidFriendly = *payload.IsKidFriendly
	}
	if event.EndDate.Before(event.StartDate) {
		return respondError(c, h.logger, badRequest("end_date must not be before start_date"), "Event")
	}

	ctx := withRequestContext(c)
	if err := h.events.Update(ctx, &event); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	updated, err := h.events.Get(ctx, event.ID)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}
	return utils.OK(c, updated, "event updated")
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	event, err := h.ownedEvent(c)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	if err := h.events.Delete(withRequestContext(c), event.ID); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	return utils.OK(c, deletedPayload(event.ID), "event deleted")
}

// ownedEvent loads the event named in the path and checks the caller may change it.
func (h *EventHandler) ownedEvent(c *fiber.Ctx) (models.Event, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return models.Event{}, err
	}
	id, err := pathParam(c, "id")
	if err != nil {
		return models.Event{}, err
	}

	event, err := h.events.Get(withRequestContext(c), id)
	if err != nil {
		return models.Event{}, err
	}
	if event.CreatorID != userID && middleware.UserRole(c) != models.RoleAdmin {
		return models.Event{}, forbidden("only the creator can change this event")
	}
	return event, nil
}

func (h *EventHandler) ensureLocation(c *fiber.Ctx, locationID string) error {
	_, err := h.places.GetLocation(withRequestContext(c), locationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return badRequest("location_id does not exist")
	}
	return err
}
