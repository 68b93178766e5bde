package dto

import "github.com/noah-isme/kultura-go/internal/models"

// Search scopes.
const (
	SearchAll       = "all"
	SearchEvents    = "events"
	SearchCities    = "cities"
	SearchLocations = "locations"
)

// SearchQuery is a free-text search across events and places.
type SearchQuery struct {
	Query string `validate:"required,min=1,max=255"`
	Type  string `validate:"omitempty,oneof=all events cities locations"`
}

// SearchResult groups matches by resource type.
type SearchResult struct {
	Events    []models.Event    `json:"events"`
	Cities    []models.City     `json:"cities"`
	Locations []models.Location `json:"locations"`
}
