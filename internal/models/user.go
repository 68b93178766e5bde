package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles recognised by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an authenticated account. It is read-only to the client after login.
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        *string   `gorm:"size:32" json:"phone,omitempty"`
	Role         string    `gorm:"size:32;default:user" json:"role"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserProfile holds the editable, public part of a user.
type UserProfile struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	UserID           string    `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Fullname         string    `gorm:"size:255" json:"fullname"`
	Bio              *string   `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL        *string   `gorm:"size:512" json:"avatar_url,omitempty"`
	IdentityImageURL *string   `gorm:"size:512" json:"identity_image_url,omitempty"`
	User             User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
