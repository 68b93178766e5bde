package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kultura",
		Subsystem: "ai",
		Name:      "reply_duration_seconds",
		Help:      "Duration of AI reply requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kultura",
		Subsystem: "ai",
		Name:      "reply_failures_total",
		Help:      "Number of AI reply failures",
	}, []string{"model"})
)

// maxHistory bounds how many prior turns are replayed to the model.
const maxHistory = 12

// OpenAIConfig defines configuration options for the OpenAI responder.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIResponder implements Responder against the OpenAI chat completion API.
type OpenAIResponder struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIResponder builds a new responder using the provided configuration.
func NewOpenAIResponder(cfg OpenAIConfig) (*OpenAIResponder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIResponder{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/kultura-go/pkg/ai/openai"),
		logger: logger.With().Str("component", "ai_openai").Logger(),
	}, nil
}

// Reply sends the conversation to OpenAI and returns the first choice.
func (r *OpenAIResponder) Reply(parent context.Context, input ConversationInput) (string, error) {
	ctx, span := r.tracer.Start(parent, "openai.reply", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
		attribute.Int("history", len(input.History)),
	))
	defer span.End()

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages:    buildMessages(input),
	})
	aiDuration.WithLabelValues(r.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", r.fail(span, fmt.Errorf("openai reply: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", r.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", r.fail(span, fmt.Errorf("empty reply from openai"))
	}

	r.logger.Debug().Int("total_tokens", resp.Usage.TotalTokens).Msg("ai reply generated")
	return content, nil
}

func (r *OpenAIResponder) fail(span trace.Span, err error) error {
	aiFailures.WithLabelValues(r.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func buildMessages(input ConversationInput) []openai.ChatCompletionMessage {
	history := input.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(input),
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input.Question,
	})
	return messages
}

func systemPrompt(input ConversationInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are a friendly cultural tourism guide. Answer briefly and only about the event below.\n\n")
	builder.WriteString("# Event\n")
	builder.WriteString(input.EventName)
	if input.Venue != "" {
		builder.WriteString("\n\n## Venue\n")
		builder.WriteString(input.Venue)
	}
	if !input.StartDate.IsZero() {
		builder.WriteString("\n\n## Starts\n")
		builder.WriteString(input.StartDate.Format(time.RFC1123))
	}
	if input.EventDescription != "" {
		builder.WriteString("\n\n## Description\n")
		builder.WriteString(input.EventDescription)
	}
	return builder.String()
}
