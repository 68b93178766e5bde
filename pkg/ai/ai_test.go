package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestEchoResponderReply(t *testing.T) {
	reply, err := NewEchoResponder().Reply(context.Background(), ConversationInput{
		EventName: "Sekaten",
		Venue:     "Alun-alun Utara",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Question:  "What should I wear?",
	})
	require.NoError(t, err)
	require.Equal(t, `About Sekaten at Alun-alun Utara on 1 September 2026: you asked "What should I wear?".`, reply)

	_, err = NewEchoResponder().Reply(context.Background(), ConversationInput{EventName: "Sekaten", Question: "  "})
	require.Error(t, err)
}

func TestBuildMessagesTrimsHistory(t *testing.T) {
	history := make([]Turn, 0, maxHistory+4)
	for i := 0; i < maxHistory+4; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	messages := buildMessages(ConversationInput{EventName: "Sekaten", History: history, Question: "When?"})
	require.Len(t, messages, maxHistory+2)
	require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	require.Contains(t, messages[0].Content, "Sekaten")
	require.Equal(t, "turn 4", messages[1].Content)
	require.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	require.Equal(t, "When?", messages[len(messages)-1].Content)
}

func TestNewOpenAIResponderRequiresKey(t *testing.T) {
	_, err := NewOpenAIResponder(OpenAIConfig{Logger: zerolog.Nop()})
	require.Error(t, err)

	responder, err := NewOpenAIResponder(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", responder.cfg.Model)
	require.Equal(t, 512, responder.cfg.MaxTokens)
}
