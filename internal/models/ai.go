package models

import (
	"time"

	"gorm.io/gorm"
)

// AI conversation roles.
const (
	AiRoleUser      = "user"
	AiRoleAssistant = "assistant"
)

// AiSession groups AI request/response pairs about one event.
type AiSession struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	EventID   string    `gorm:"size:64;index" json:"event_id"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (s *AiSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// AiMessage is one turn of an AI conversation.
type AiMessage struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	SessionID string    `gorm:"size:64;index" json:"session_id"`
	Role      string    `gorm:"size:16" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (m *AiMessage) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
