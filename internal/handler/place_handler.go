package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// PlaceHandler serves provinces, cities and locations.
type PlaceHandler struct {
	places    repository.PlaceRepository
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPlaceHandler constructs a place handler.
func NewPlaceHandler(places repository.PlaceRepository, validate *validator.Validate, logger zerolog.Logger) *PlaceHandler {
	return &PlaceHandler{
		places:    places,
		validate:  validate,
		sanitizer: textSanitizer(),
		logger:    logger.With().Str("component", "place_handler").Logger(),
	}
}

// Register binds the place routes. Only location creation needs a session.
func (h *PlaceHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Get("/provinces", h.listProvinces)
	router.Get("/provinces/:id", h.getProvince)
	router.Get("/cities", h.listCities)
	router.Get("/cities/:id", h.getCity)
	router.Get("/locations", h.listLocations)
	router.Get("/locations/:id", h.getLocation)
	router.Post("/locations", protect, h.createLocation)
}

func (h *PlaceHandler) listProvinces(c *fiber.Ctx) error {
	provinces, err := h.places.ListProvinces(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "Province")
	}
	return utils.OK(c, provinces, "provinces")
}

func (h *PlaceHandler) getProvince(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Province")
	}

	province, err := h.places.GetProvince(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Province")
	}
	return utils.OK(c, province, "Province")
}

func (h *PlaceHandler) listCities(c *fiber.Ctx) error {
	cities, err := h.places.ListCities(withRequestContext(c), strings.TrimSpace(c.Query("province_id")))
	if err != nil {
		return respondError(c, h.logger, err, "City")
	}
	return utils.OK(c, cities, "cities")
}

func (h *PlaceHandler) getCity(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "City")
	}

	city, err := h.places.GetCity(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "City")
	}
	return utils.OK(c, city, "City")
}

func (h *PlaceHandler) listLocations(c *fiber.Ctx) error {
	locations, err := h.places.ListLocations(withRequestContext(c), strings.TrimSpace(c.Query("city_id")))
	if err != nil {
		return respondError(c, h.logger, err, "Location")
	}
	return utils.OK(c, locations, "locations")
}

func (h *PlaceHandler) getLocation(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Location")
	}

	location, err := h.places.GetLocation(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Location")
	}
	return utils.OK(c, location, "Location")
}

func (h *PlaceHandler) createLocation(c *fiber.Ctx) error {
	var payload dto.LocationCreateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Location")
	}

	ctx := withRequestContext(c)
	if _, err := h.places.GetCity(ctx, payload.CityID); errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.logger, badRequest("city_id does not exist"), "Location")
	} else if err != nil {
		return respondError(c, h.logger, err, "Location")
	}

	location := models.Location{
		Name:      sanitizeText(h.sanitizer, payload.Name),
		Address:   sanitizeText(h.sanitizer, payload.Address),
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		CityID:    payload.CityID,
	}
	if err := h.places.CreateLocation(ctx, &location); err != nil {
		return respondError(c, h.logger, err, "Location")
	}

	created, err := h.places.GetLocation(ctx, location.ID)
	if err != nil {
		return respondError(c, h.logger, err, "Location")
	}
	return utils.Created(c, created, "location created")
}
