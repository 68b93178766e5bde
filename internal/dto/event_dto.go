package dto

import "time"

// EventQuery filters the event listing.
type EventQuery struct {
	Page        int    `validate:"omitempty,min=1"`
	PerPage     int    `validate:"omitempty,min=1,max=100"`
	CityID      string `validate:"omitempty,max=64"`
	CreatorID   string `validate:"omitempty,max=64"`
	KidFriendly *bool
	Search      string `validate:"omitempty,max=255"`
}

// EventCreateRequest is the payload to create an event.
type EventCreateRequest struct {
	Name          string    `json:"name" validate:"required,min=3,max=255"`
	Description   string    `json:"description" validate:"required,max=5000"`
	ImageURL      string    `json:"image_url" validate:"omitempty,url,max=512"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	IsKidFriendly bool      `json:"is_kid_friendly"`
	LocationID    string    `json:"location_id" validate:"required,max=64"`
}

// EventUpdateRequest changes an existing event. Nil fields are left untouched.
type EventUpdateRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	ImageURL      *string    `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IsKidFriendly *bool      `json:"is_kid_friendly,omitempty"`
	LocationID    *string    `json:"location_id,omitempty" validate:"omitempty,max=64"`
}
