package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

const searchLimit = 20

// SearchHandler runs free-text search across events and places.
type SearchHandler struct {
	events   repository.EventRepository
	places   repository.PlaceRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(events repository.EventRepository, places repository.PlaceRepository, validate *validator.Validate, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		events:   events,
		places:   places,
		validate: validate,
		logger:   logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register binds the search route.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/", h.search)
}

func (h *SearchHandler) search(c *fiber.Ctx) error {
	query := dto.SearchQuery{
		Query: strings.TrimSpace(c.Query("q")),
		Type:  strings.ToLower(strings.TrimSpace(c.Query("type"))),
	}
	if query.Type == "" {
		query.Type = dto.SearchAll
	}
	if err := validateStruct(h.validate, query); err != nil {
		return respondError(c, h.logger, err, "Result")
	}

	result := dto.SearchResult{
		Events:    []models.Event{},
		Cities:    []models.City{},
		Locations: []models.Location{},
	}

	group, ctx := errgroup.WithContext(withRequestContext(c))
	if wants(query.Type, dto.SearchEvents) {
		group.Go(func() error {
			events, _, err := h.events.List(ctx, repository.EventFilter{Search: query.Query, PageSize: searchLimit})
			result.Events = events
			return err
		})
	}
	if wants(query.Type, dto.SearchCities) {
		group.Go(func() error {
			cities, err := h.places.SearchCities(ctx, query.Query, searchLimit)
			result.Cities = cities
			return err
		})
	}
	if wants(query.Type, dto.SearchLocations) {
		group.Go(func() error {
			locations, err := h.places.SearchLocations(ctx, query.Query, searchLimit)
			result.Locations = locations
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return respondError(c, h.logger, err, "Result")
	}

	return utils.OK(c, result, "search results")
}

func wants(scope, kind string) bool {
	return scope == dto.SearchAll || scope == kind
}
