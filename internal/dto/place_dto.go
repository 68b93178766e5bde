package dto

// LocationCreateRequest registers a new venue.
type LocationCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=255"`
	Address   string  `json:"address" validate:"omitempty,max=512"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	CityID    string  `json:"city_id" validate:"required,max=64"`
}
