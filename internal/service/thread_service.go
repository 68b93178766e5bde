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

// ThreadService manages the per-event discussion thread.
type ThreadService interface {
	// GetByEventID returns found=false with a nil error when the event has no thread yet.
	GetByEventID(ctx context.Context, eventID string) (models.Thread, bool, error)
	Get(ctx context.Context, id string) (models.Thread, error)
	Create(ctx context.Context, payload dto.ThreadCreateRequest) (models.Thread, error)
	Join(ctx context.Context, payload dto.ThreadJoinRequest) (models.DiscussionParticipant, error)
}

type threadService struct {
	api       apiclient.Requester
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewThreadService constructs the thread service.
func NewThreadService(api apiclient.Requester, validate *validator.Validate, logger zerolog.Logger) ThreadService {
	return &threadService{
		api:       api,
		validator: validate,
		logger:    logger.With().Str("component", "thread_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/kultura-go/internal/service/thread"),
	}
}

func (s *threadService) GetByEventID(ctx context.Context, eventID string) (models.Thread, bool, error) {
	if eventID == "" {
		return models.Thread{}, false, apperror.Validation("event id is required", nil)
	}

	spanCtx, span := s.tracer.Start(ctx, "thread.get_by_event", trace.WithAttributes(attribute.String("event_id", eventID)))
	defer span.End()

	thread, err := apiclient.Decode[models.Thread](s.api.Do(spanCtx, http.MethodGet, "/threads/event/"+url.PathEscape(eventID), nil))
	if apperror.IsKind(err, apperror.KindNotFound) {
		return models.Thread{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return models.Thread{}, false, err
	}
	return thread, true, nil
}

func (s *threadService) Get(ctx context.Context, id string) (models.Thread, error) {
	return apiclient.Decode[models.Thread](s.api.Do(ctx, http.MethodGet, "/threads/"+url.PathEscape(id), nil))
}

func (s *threadService) Create(ctx context.Context, payload dto.ThreadCreateRequest) (models.Thread, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return models.Thread{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "thread.create", trace.WithAttributes(attribute.String("event_id", payload.EventID)))
	defer span.End()

	thread, err := apiclient.Decode[models.Thread](s.api.Do(spanCtx, http.MethodPost, "/threads", payload))
	if err != nil {
		span.RecordError(err)
		return models.Thread{}, err
	}
	s.logger.Info().Str("thread_id", thread.ID).Str("event_id", thread.EventID).Msg("discussion thread created")
	return thread, nil
}

func (s *threadService) Join(ctx context.Context, payload dto.ThreadJoinRequest) (models.DiscussionParticipant, error) {
	if err := validatePayload(s.validator, payload); err != nil {
		return models.DiscussionParticipant{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "thread.join", trace.WithAttributes(
		attribute.String("thread_id", payload.ThreadID),
		attribute.String("event_id", payload.EventID),
	))
	defer span.End()

	path := "/threads/" + url.PathEscape(payload.ThreadID) + "/join"
	participant, err := apiclient.Decode[models.DiscussionParticipant](s.api.Do(spanCtx, http.MethodPost, path, payload))
	if err != nil {
		span.RecordError(err)
		return models.DiscussionParticipant{}, err
	}
	return participant, nil
}
