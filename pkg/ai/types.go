package ai

import (
	"context"
	"time"
)

// Turn is one prior exchange in an assistant conversation.
type Turn struct {
	Role    string
	Content string
}

// ConversationInput carries the event context and history for a reply.
type ConversationInput struct {
	EventName        string
	EventDescription string
	Venue            string
	StartDate        time.Time
	History          []Turn
	Question         string
}

// Responder produces the assistant's answer to a question about an event.
type Responder interface {
	Reply(ctx context.Context, input ConversationInput) (string, error)
}
