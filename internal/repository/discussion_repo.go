package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kultura-go/internal/models"
)

// DiscussionRepository persists event threads, their participants and messages.
type DiscussionRepository interface {
	GetThreadByEventID(ctx context.Context, eventID string) (models.Thread, error)
	GetThread(ctx context.Context, id string) (models.Thread, error)
	CreateThread(ctx context.Context, thread *models.Thread) error
	AddParticipant(ctx context.Context, threadID, userID string) (models.DiscussionParticipant, error)
	IsParticipant(ctx context.Context, threadID, userID string) (bool, error)
	ParticipantCounts(ctx context.Context, eventIDs []string) (map[string]int64, error)

	ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error)
	GetMessage(ctx context.Context, id string) (models.Message, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	UpdateMessage(ctx context.Context, message *models.Message) error
	DeleteMessage(ctx context.Context, id string) error
}

type discussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository constructs a GORM-backed repository.
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) GetThreadByEventID(ctx context.Context, eventID string) (models.Thread, error) {
	var thread models.Thread
	if err := r.withThreadAssociations(ctx).First(&thread, "event_id = ?", eventID).Error; err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

func (r *discussionRepository) GetThread(ctx context.Context, id string) (models.Thread, error) {
	var thread models.Thread
	if err := r.withThreadAssociations(ctx).First(&thread, "id = ?", id).Error; err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

// CreateThread stores the thread and enrolls its creator as the first participant.
func (r *discussionRepository) CreateThread(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(thread).Error; err != nil {
			return err
		}
		participant := models.DiscussionParticipant{ThreadID: thread.ID, UserID: thread.CreatorID, JoinedAt: thread.CreatedAt}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}
		thread.Participants = []models.DiscussionParticipant{participant}
		return nil
	})
}

// AddParticipant is idempotent: joining twice keeps the original join time.
func (r *discussionRepository) AddParticipant(ctx context.Context, threadID, userID string) (models.DiscussionParticipant, error) {
	participant := models.DiscussionParticipant{ThreadID: threadID, UserID: userID, JoinedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participant).Error; err != nil {
		return models.DiscussionParticipant{}, err
	}

	var stored models.DiscussionParticipant
	if err := r.db.WithContext(ctx).
		First(&stored, "thread_id = ? AND user_id = ?", threadID, userID).Error; err != nil {
		return models.DiscussionParticipant{}, err
	}
	return stored, nil
}

func (r *discussionRepository) IsParticipant(ctx context.Context, threadID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DiscussionParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *discussionRepository) ParticipantCounts(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID string
		Total   int64
	}
	if err := r.db.WithContext(ctx).
		Table("threads").
		Select("threads.event_id AS event_id, COUNT(discussion_participants.user_id) AS total").
		Joins("LEFT JOIN discussion_participants ON discussion_participants.thread_id = threads.id").
		Where("threads.event_id IN ?", eventIDs).
		Group("threads.event_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.EventID] = row.Total
	}
	return counts, nil
}

func (r *discussionRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	// Latest window, returned oldest first.
	messages := []models.Message{}
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *discussionRepository) GetMessage(ctx context.Context, id string) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *discussionRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&models.Thread{}).
			Where("id = ?", message.ThreadID).
			UpdateColumn("updated_at", message.CreatedAt).
			Error
	})
}

func (r *discussionRepository) UpdateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *discussionRepository) DeleteMessage(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *discussionRepository) withThreadAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		})
}
