package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/observability"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
)

// DiscussionHandler provides HTTP endpoints for event threads and their messages.
type DiscussionHandler struct {
	discussions repository.DiscussionRepository
	events      repository.EventRepository
	validate    *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDiscussionHandler constructs a handler instance.
func NewDiscussionHandler(discussions repository.DiscussionRepository, events repository.EventRepository, validate *validator.Validate, logger zerolog.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussions: discussions,
		events:      events,
		validate:    validate,
		sanitizer:   textSanitizer(),
		logger:      logger.With().Str("component", "discussion_handler").Logger(),
		now:         time.Now,
	}
}

// Register binds the thread and message routes. Every route requires a session.
func (h *DiscussionHandler) Register(router fiber.Router, protect fiber.Handler) {
	threads := router.Group("/threads", protect)
	threads.Get("/event/:eventId", h.getThreadByEvent)
	threads.Get("/:id", h.getThread)
	threads.Post("/", h.createThread)
	threads.Post("/:id/join", h.joinThread)

	messages := router.Group("/messages", protect)
	messages.Get("/thread/:threadId", h.listMessages)
	messages.Post("/", h.sendMessage)
	messages.Put("/:id", h.updateMessage)
	messages.Delete("/:id", h.deleteMessage)
}

func (h *DiscussionHandler) getThreadByEvent(c *fiber.Ctx) error {
	eventID, err := pathParam(c, "eventId")
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	thread, err := h.discussions.GetThreadByEventID(withRequestContext(c), eventID)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	return utils.OK(c, thread, "thread")
}

func (h *DiscussionHandler) getThread(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	thread, err := h.discussions.GetThread(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	return utils.OK(c, thread, "thread")
}

// createThread opens the single discussion of an event. The creator joins it.
func (h *DiscussionHandler) createThread(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	var payload dto.ThreadCreateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	ctx := withRequestContext(c)
	if _, err := h.events.Get(ctx, payload.EventID); err != nil {
		return respondError(c, h.logger, err, "Event")
	}
	if _, err := h.discussions.GetThreadByEventID(ctx, payload.EventID); err == nil {
		return respondError(c, h.logger, conflict("event already has a discussion"), "Thread")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, h.logger, err, "Thread")
	}

	thread := models.Thread{
		EventID:   payload.EventID,
		Status:    models.ThreadStatusOpen,
		CreatorID: userID,
		CreatedAt: h.now().UTC(),
	}
	if err := h.discussions.CreateThread(ctx, &thread); err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	created, err := h.discussions.GetThread(ctx, thread.ID)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	requestLogger(h.logger, c).Info().Str("thread_id", thread.ID).Str("event_id", thread.EventID).Msg("thread created")
	return utils.Created(c, created, "thread created")
}

func (h *DiscussionHandler) joinThread(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	id, err := pathParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	var payload dto.ThreadJoinRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	if payload.ThreadID != id {
		return respondError(c, h.logger, badRequest("thread_id does not match the path"), "Thread")
	}

	ctx := withRequestContext(c)
	thread, err := h.discussions.GetThread(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	if thread.EventID != payload.EventID {
		return respondError(c, h.logger, badRequest("thread does not belong to event"), "Thread")
	}
	if thread.Status == models.ThreadStatusClosed {
		return respondError(c, h.logger, forbidden("discussion is closed"), "Thread")
	}

	participant, err := h.discussions.AddParticipant(ctx, thread.ID, userID)
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	return utils.OK(c, participant, "joined thread")
}

func (h *DiscussionHandler) listMessages(c *fiber.Ctx) error {
	threadID, err := pathParam(c, "threadId")
	if err != nil {
		return respondError(c, h.logger, err, "Thread")
	}
	if err := h.requireParticipant(c, threadID); err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	messages, err := h.discussions.ListMessages(withRequestContext(c), threadID, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Message")
	}
	return utils.OK(c, messages, "messages")
}

func (h *DiscussionHandler) sendMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	var payload dto.MessageSendRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Message")
	}
	if err := h.requireParticipant(c, payload.ThreadID); err != nil {
		return respondError(c, h.logger, err, "Thread")
	}

	content := sanitizeText(h.sanitizer, payload.Content)
	if content == "" {
		return respondError(c, h.logger, badRequest("message cannot be empty"), "Message")
	}
	kind := payload.Type
	if kind == "" {
		kind = models.MessageTypeText
	}

	now := h.now().UTC()
	message := models.Message{
		ThreadID:  payload.ThreadID,
		SenderID:  userID,
		Content:   content,
		Type:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.discussions.CreateMessage(withRequestContext(c), &message); err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	observability.DiscussionMessages().WithLabelValues(kind).Inc()
	return utils.Created(c, message, "message sent")
}

func (h *DiscussionHandler) updateMessage(c *fiber.Ctx) error {
	message, err := h.ownedMessage(c)
	if err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	var payload dto.MessageUpdateRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	content := sanitizeText(h.sanitizer, payload.Content)
	if content == "" {
		return respondError(c, h.logger, badRequest("message cannot be empty"), "Message")
	}
	message.Content = content
	message.UpdatedAt = h.now().UTC()

	if err := h.discussions.UpdateMessage(withRequestContext(c), &message); err != nil {
		return respondError(c, h.logger, err, "Message")
	}
	return utils.OK(c, message, "message updated")
}

func (h *DiscussionHandler) deleteMessage(c *fiber.Ctx) error {
	message, err := h.ownedMessage(c)
	if err != nil {
		return respondError(c, h.logger, err, "Message")
	}

	if err := h.discussions.DeleteMessage(withRequestContext(c), message.ID); err != nil {
		return respondError(c, h.logger, err, "Message")
	}
	return utils.OK(c, deletedPayload(message.ID), "message deleted")
}

// requireParticipant rejects callers who have not joined the thread.
func (h *DiscussionHandler) requireParticipant(c *fiber.Ctx, threadID string) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := withRequestContext(c)
	if _, err := h.discussions.GetThread(ctx, threadID); err != nil {
		return err
	}
	ok, err := h.discussions.IsParticipant(ctx, threadID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return forbidden("join the discussion to take part")
	}
	return nil
}

// ownedMessage loads the message named in the path; only its sender may change it.
func (h *DiscussionHandler) ownedMessage(c *fiber.Ctx) (models.Message, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return models.Message{}, err
	}
	id, err := pathParam(c, "id")
	if err != nil {
		return models.Message{}, err
	}

	message, err := h.discussions.GetMessage(withRequestContext(c), id)
	if err != nil {
		return models.Message{}, err
	}
	if message.SenderID != userID {
		return models.Message{}, forbidden("only the sender can change this message")
	}
	return message, nil
}
