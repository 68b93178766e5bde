package ai

import (
	"context"
	"fmt"
	"strings"
)

// EchoResponder answers offline from the event details alone. It backs the
// dev backend when no model provider is configured.
type EchoResponder struct{}

// NewEchoResponder returns a responder that never leaves the process.
func NewEchoResponder() EchoResponder {
	return EchoResponder{}
}

// Reply summarises the event and repeats the question back.
func (EchoResponder) Reply(ctx context.Context, input ConversationInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return "", fmt.Errorf("question is required")
	}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "About %s", input.EventName)
	if input.Venue != "" {
		fmt.Fprintf(&builder, " at %s", input.Venue)
	}
	if !input.StartDate.IsZero() {
		fmt.Fprintf(&builder, " on %s", input.StartDate.Format("2 January 2006"))
	}
	fmt.Fprintf(&builder, ": you asked %q.", question)
	if input.EventDescription != "" {
		builder.WriteString(" ")
		builder.WriteString(input.EventDescription)
	}
	return builder.String(), nil
}
