package dto

// MaxMessageLength bounds discussion message content, counted in characters.
const MaxMessageLength = 1000

// ThreadCreateRequest starts the discussion for an event.
type ThreadCreateRequest struct {
	EventID string `json:"event_id" validate:"required,max=64"`
}

// ThreadJoinRequest adds the current user to a thread's participants.
type ThreadJoinRequest struct {
	ThreadID string `json:"thread_id" validate:"required,max=64"`
	EventID  string `json:"event_id" validate:"required,max=64"`
}

// MessageSendRequest posts a discussion message.
type MessageSendRequest struct {
	ThreadID string `json:"thread_id" validate:"required,max=64"`
	Content  string `json:"content" validate:"required,max=1000"`
	Type     string `json:"type" validate:"omitempty,oneof=text image"`
}

// MessageUpdateRequest edits the content of a message.
type MessageUpdateRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
