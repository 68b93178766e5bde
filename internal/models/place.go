package models

import "gorm.io/gorm"

// Province is a top-level region.
type Province struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (p *Province) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// City belongs to a Province.
type City struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ProvinceID string    `gorm:"size:64;index" json:"province_id"`
	Province   *Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (c *City) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Location is a venue inside a City. Events reference a Location.
type Location struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	Address   string  `gorm:"size:512" json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CityID    string  `gorm:"size:64;index" json:"city_id"`
	City      *City   `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (l *Location) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
