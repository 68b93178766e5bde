package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a cultural event hosted at a Location. Only its creator may change it.
type Event struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	ImageURL      string    `gorm:"size:512" json:"image_url"`
	StartDate     time.Time `gorm:"index" json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IsKidFriendly bool      `gorm:"not null;default:false" json:"is_kid_friendly"`
	LocationID    string    `gorm:"size:64;index" json:"location_id"`
	Location      Location  `gorm:"foreignKey:LocationID" json:"location"`
	CreatorID     string    `gorm:"size:64;index" json:"creator_id"`
	Creator       User      `gorm:"foreignKey:CreatorID" json:"creator"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
