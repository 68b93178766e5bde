package dto

// AiSessionRequest opens an AI conversation about an event.
type AiSessionRequest struct {
	EventID string `json:"event_id" validate:"required,max=64"`
}

// AiMessageRequest is a user turn in an AI conversation.
type AiMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
