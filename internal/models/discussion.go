package models

import (
	"time"

	"gorm.io/gorm"
)

// Thread statuses.
const (
	ThreadStatusOpen   = "open"
	ThreadStatusClosed = "closed"
)

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Thread is the single discussion attached to an Event.
type Thread struct {
	ID           string                  `gorm:"primaryKey;size:64" json:"id"`
	EventID      string                  `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	Status       string                  `gorm:"size:32;default:open" json:"status"`
	CreatorID    string                  `gorm:"size:64;index" json:"creator_id"`
	Creator      User                    `gorm:"foreignKey:CreatorID" json:"creator"`
	Participants []DiscussionParticipant `gorm:"foreignKey:ThreadID" json:"discussion_participants"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (t *Thread) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// HasParticipant reports whether userID appears in the participant list.
func (t Thread) HasParticipant(userID string) bool {
	for _, participant := range t.Participants {
		if participant.UserID == userID {
			return true
		}
	}
	return false
}

// DiscussionParticipant records that a user joined a Thread.
type DiscussionParticipant struct {
	ThreadID string    `gorm:"primaryKey;size:64" json:"thread_id"`
	UserID   string    `gorm:"primaryKey;size:64" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message is a single discussion post inside a Thread.
type Message struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	SenderID  string    `gorm:"size:64;index" json:"sender_id"`
	ThreadID  string    `gorm:"size:64;index;not null" json:"thread_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Type      string    `gorm:"size:32;default:text" json:"type"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
