package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
)

// AiService talks to the event assistant.
type AiService interface {
	StartSession(ctx context.Context, eventID string) (models.AiSession, error)
	SendMessage(ctx context.Context, sessionID, content string) (models.AiMessage, error)
}

type aiService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAiService constructs the AI chat service.
func NewAiService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) AiService {
	return &aiService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "ai_service").Logger(),
	}
}

func (s *aiService) StartSession(ctx context.Context, eventID string) (models.AiSession, error) {
	payload := dto.AiSessionRequest{EventID: eventID}
	if err := validatePayload(s.validator, payload); err != nil {
		return models.AiSession{}, err
	}
	return apiclient.Decode[models.AiSession](s.api.Do(ctx, http.MethodPost, "/ai/chat/session", payload))
}

func (s *aiService) SendMessage(ctx context.Context, sessionID, content string) (models.AiMessage, error) {
	if sessionID == "" {
		return models.AiMessage{}, apperror.Validation("session id is required", nil)
	}
	payload := dto.AiMessageRequest{Content: content}
	if err := validatePayload(s.validator, payload); err != nil {
		return models.AiMessage{}, err
	}

	path := "/ai/chat/" + url.PathEscape(sessionID) + "/message"
	reply, err := apiclient.Decode[models.AiMessage](s.api.Do(ctx, http.MethodPost, path, payload))
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("ai reply failed")
		return models.AiMessage{}, err
	}
	return reply, nil
}
