package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foreveruup/wp-bot/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	historyWindowTurns = 12
	llmCallTimeout     = 30 * time.Second

	replyMaxTokens        = 350
	replyTemperature      = 0.8
	replyTopP             = 0.9
	replyFrequencyPenalty = 0.6
	replyPresencePenalty  = 0.5
)

var generatorTracer = otel.Tracer("wpbot.internal.conversation.generator")

// Generator produces LLM replies using a sliding window of per-chat history.
type Generator struct {
	llm     LLMClient
	history *HistoryStore
	model   string
	logger  *logging.Logger
}

// NewGenerator returns a reply generator backed by the given LLM client.
func NewGenerator(llm LLMClient, history *HistoryStore, model string, logger *logging.Logger) *Generator {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if history == nil {
		panic("conversation: history store cannot be nil")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Generator{
		llm:     llm,
		history: history,
		model:   model,
		logger:  logger,
	}
}

// Reply records the user message, asks the LLM for a response over the
// recent history window, and records the assistant turn on success. On
// failure the user message stays in history and no assistant turn is added.
func (g *Generator) Reply(ctx context.Context, chatID, userMessage string) (string, error) {
	ctx, span := generatorTracer.Start(ctx, "conversation.generate")
	defer span.End()
	span.SetAttributes(attribute.String("wpbot.chat_id", chatID))

	g.history.Append(chatID, ChatMessage{Role: ChatRoleUser, Content: userMessage})

	req := LLMRequest{
		Model:            g.model,
		System:           systemDirective(),
		Messages:         g.history.Window(chatID, historyWindowTurns),
		MaxTokens:        replyMaxTokens,
		Temperature:      replyTemperature,
		TopP:             replyTopP,
		FrequencyPenalty: replyFrequencyPenalty,
		PresencePenalty:  replyPresencePenalty,
	}

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	resp, err := g.llm.Complete(callCtx, req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("conversation: reply generation failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		err := errors.New("conversation: llm returned an empty reply")
		span.RecordError(err)
		return "", err
	}

	g.history.Append(chatID, ChatMessage{Role: ChatRoleAssistant, Content: reply})

	g.logger.Debug("generated reply",
		"chat_id", chatID,
		"chars", len(reply),
		"output_tokens", resp.Usage.OutputTokens,
	)
	return reply, nil
}
