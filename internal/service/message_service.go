package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
)

// MessageService reads and writes discussion messages.
type MessageService interface {
	ListByThread(ctx context.Context, threadID string) ([]models.Message, error)
	Send(ctx context.Context, payload dto.MessageSendRequest) (models.Message, error)
	Update(ctx context.Context, id string, payload dto.MessageUpdateRequest) (models.Message, error)
	Delete(ctx context.Context, id string) error
}

type messageService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewMessageService constructs the message service.
func NewMessageService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) MessageService {
	return &messageService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "message_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/kultura-go/internal/service/message"),
	}
}

func (s *messageService) ListByThread(ctx context.Context, threadID string) ([]models.Message, error) {
	if threadID == "" {
		return nil, apperror.Validation("thread id is required", nil)
	}
	return apiclient.Decode[[]models.Message](s.api.Do(ctx, http.MethodGet, "/messages/thread/"+url.PathEscape(threadID), nil))
}

func (s *messageService) Send(ctx context.Context, payload dto.MessageSendRequest) (models.Message, error) {
	if err := ValidateMessageContent(payload.Content); err != nil {
		return models.Message{}, err
	}
	if payload.Type == "" {
		payload.Type = models.MessageTypeText
	}
	if err := validatePayload(s.validator, payload); err != nil {
		return models.Message{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "message.send", trace.WithAttributes(
		attribute.String("thread_id", payload.ThreadID),
		attribute.Int("content_length", len([]rune(payload.Content))),
	))
	defer span.End()

	message, err := apiclient.Decode[models.Message](s.api.Do(spanCtx, http.MethodPost, "/messages", payload))
	if err != nil {
		span.RecordError(err)
		return models.Message{}, err
	}
	return message, nil
}

func (s *messageService) Update(ctx context.Context, id string, payload dto.MessageUpdateRequest) (models.Message, error) {
	if id == "" {
		return models.Message{}, apperror.Validation("message id is required", nil)
	}
	if err := ValidateMessageContent(payload.Content); err != nil {
		return models.Message{}, err
	}
	return apiclient.Decode[models.Message](s.api.Do(ctx, http.MethodPut, "/messages/"+url.PathEscape(id), payload))
}

func (s *messageService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.Validation("message id is required", nil)
	}
	if err := s.api.Do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil).Err(); err != nil {
		return err
	}
	s.logger.Debug().Str("message_id", id).Msg("message deleted")
	return nil
}
