package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/models"
)

// AiRepository persists assistant sessions and their turns.
type AiRepository interface {
	CreateSession(ctx context.Context, session *models.AiSession) error
	GetSession(ctx context.Context, id string) (models.AiSession, error)
	AppendMessage(ctx context.Context, message *models.AiMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]models.AiMessage, error)
}

type aiRepository struct {
	db *gorm.DB
}

// NewAiRepository constructs a GORM-backed repository.
func NewAiRepository(db *gorm.DB) AiRepository {
	return &aiRepository{db: db}
}

func (r *aiRepository) CreateSession(ctx context.Context, session *models.AiSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *aiRepository) GetSession(ctx context.Context, id string) (models.AiSession, error) {
	var session models.AiSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return models.AiSession{}, err
	}
	return session, nil
}

func (r *aiRepository) AppendMessage(ctx context.Context, message *models.AiMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *aiRepository) ListMessages(ctx context.Context, sessionID string) ([]models.AiMessage, error) {
	messages := []models.AiMessage{}
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
