package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opAiSession = "AI_SESSION"
	opAiMessage = "AI_MESSAGE"
)

// AiState is the active assistant session and its turns.
type AiState struct {
	Session      *models.AiSession
	Conversation []models.AiMessage
}

// AiStore tracks a conversation with the event assistant.
type AiStore struct {
	*Store[AiState]
	ai       service.AiService
	notifier Notifier
}

// NewAiStore builds the assistant container.
func NewAiStore(ai service.AiService, notifier Notifier, logger zerolog.Logger) *AiStore {
	return &AiStore{
		Store:    New("ai", func() AiState { return AiState{} }, reduceAi, logger),
		ai:       ai,
		notifier: notifier,
	}
}

// StartSession opens a new session for eventID and drops the previous conversation.
func (s *AiStore) StartSession(ctx context.Context, eventID string) (models.AiSession, error) {
	return Run(ctx, s.Store, s.notifier, opAiSession, "session", func(ctx context.Context) (models.AiSession, error) {
		return s.ai.StartSession(ctx, eventID)
	})
}

// Ask appends the user turn immediately and the assistant reply when it arrives.
// The user turn is withdrawn if the request fails.
func (s *AiStore) Ask(ctx context.Context, content string) (models.AiMessage, error) {
	session := s.State().Session
	if session == nil {
		return models.AiMessage{}, apperror.Validation("start a session first", nil)
	}

	turn := models.AiMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.AiRoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	seq := s.BeginWith(opAiMessage, "", turn)

	reply, err := s.ai.SendMessage(ctx, session.ID, content)
	if err != nil {
		if current := s.State().Session; current == nil || current.ID != session.ID {
			return models.AiMessage{}, err
		}
		if s.Dispatch(Action{Type: opAiMessage + SuffixError, Seq: seq, Payload: turn.ID, Err: err}) && s.notifier != nil {
			s.notifier.Notify(ctx, err)
		}
		return models.AiMessage{}, err
	}
	if reply.SessionID == "" {
		reply.SessionID = session.ID
	}
	s.Dispatch(Action{Type: opAiMessage + SuffixSuccess, Seq: seq, Payload: reply})
	return reply, nil
}

func reduceAi(state AiState, action Action) AiState {
	switch action.Type {
	case opAiSession + SuffixSuccess:
		session := action.Payload.(models.AiSession)
		return AiState{Session: &session}
	case opAiMessage + SuffixStart, opAiMessage + SuffixSuccess:
		// Turns belong to the session they were asked in.
		message := action.Payload.(models.AiMessage)
		if state.Session == nil || message.SessionID != state.Session.ID {
			return state
		}
		state.Conversation = append(append([]models.AiMessage(nil), state.Conversation...), message)
	case opAiMessage + SuffixError:
		localID := action.Payload.(string)
		kept := make([]models.AiMessage, 0, len(state.Conversation))
		for _, message := range state.Conversation {
			if message.ID != localID {
				kept = append(kept, message)
			}
		}
		state.Conversation = kept
	}
	return state
}
