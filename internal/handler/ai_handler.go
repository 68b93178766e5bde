package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/repository"
	"github.com/noah-isme/kultura-go/internal/utils"
	"github.com/noah-isme/kultura-go/pkg/ai"
)

// AiHandler runs assistant conversations about events.
type AiHandler struct {
	sessions  repository.AiRepository
	events    repository.EventRepository
	responder ai.Responder
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAiHandler constructs an assistant handler.
func NewAiHandler(sessions repository.AiRepository, events repository.EventRepository, responder ai.Responder, validate *validator.Validate, logger zerolog.Logger) *AiHandler {
	return &AiHandler{
		sessions:  sessions,
		events:    events,
		responder: responder,
		validate:  validate,
		logger:    logger.With().Str("component", "ai_handler").Logger(),
		now:       time.Now,
	}
}

// Register binds the assistant routes. Every route requires a session.
func (h *AiHandler) Register(router fiber.Router, protect fiber.Handler) {
	chat := router.Group("/chat", protect)
	chat.Post("/session", h.startSession)
	chat.Post("/:sessionId/message", h.sendMessage)
}

func (h *AiHandler) startSession(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	var payload dto.AiSessionRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	ctx := withRequestContext(c)
	if _, err := h.events.Get(ctx, payload.EventID); err != nil {
		return respondError(c, h.logger, err, "Event")
	}

	session := models.AiSession{EventID: payload.EventID, UserID: userID, CreatedAt: h.now().UTC()}
	if err := h.sessions.CreateSession(ctx, &session); err != nil {
		return respondError(c, h.logger, err, "Session")
	}
	return utils.Created(c, session, "session started")
}

func (h *AiHandler) sendMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, h.logger, err, "Session")
	}
	sessionID, err := pathParam(c, "sessionId")
	if err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	var payload dto.AiMessageRequest
	if err := parseBody(c, h.validate, &payload); err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	ctx := withRequestContext(c)
	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return respondError(c, h.logger, err, "Session")
	}
	if session.UserID != userID {
		return respondError(c, h.logger, forbidden("session belongs to another user"), "Session")
	}

	event, err := h.events.Get(ctx, session.EventID)
	if err != nil {
		return respondError(c, h.logger, err, "Event")
	}
	history, err := h.sessions.ListMessages(ctx, session.ID)
	if err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	question := models.AiMessage{SessionID: session.ID, Role: models.AiRoleUser, Content: payload.Content, CreatedAt: h.now().UTC()}
	if err := h.sessions.AppendMessage(ctx, &question); err != nil {
		return respondError(c, h.logger, err, "Session")
	}

	answer, err := h.responder.Reply(ctx, conversationInput(event, history, payload.Content))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Str("session_id", session.ID).Msg("assistant reply failed")
		return utils.Fail(c, fiber.StatusBadGateway, "AI_UNAVAILABLE", "assistant is unavailable, try again later", nil)
	}

	reply := models.AiMessage{SessionID: session.ID, Role: models.AiRoleAssistant, Content: answer, CreatedAt: h.now().UTC()}
	if err := h.sessions.AppendMessage(ctx, &reply); err != nil {
		return respondError(c, h.logger, err, "Session")
	}
	return utils.OK(c, reply, "assistant reply")
}

func conversationInput(event models.Event, history []models.AiMessage, question string) ai.ConversationInput {
	turns := make([]ai.Turn, 0, len(history))
	for _, message := range history {
		turns = append(turns, ai.Turn{Role: message.Role, Content: message.Content})
	}

	input := ai.ConversationInput{
		EventName:        event.Name,
		EventDescription: event.Description,
		Venue:            event.Location.Name,
		StartDate:        event.StartDate,
		History:          turns,
		Question:         question,
	}
	if event.Location.City != nil {
		input.Venue = event.Location.Name + ", " + event.Location.City.Name
	}
	return input
}
