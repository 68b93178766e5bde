package models

import "time"

// Badge is an entry of the static badge catalog.
type Badge struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"size:512" json:"icon_url"`
}

// UserBadge joins a user with a badge they earned.
type UserBadge struct {
	UserID   string    `gorm:"primaryKey;size:64" json:"user_id"`
	BadgeID  string    `gorm:"primaryKey;size:64" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	EarnedAt time.Time `json:"earned_at"`
}
