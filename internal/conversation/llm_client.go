package conversation

import (
	"context"
	"strings"
)

// Chat roles used in conversation turns and provider requests.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one conversation turn as stored in chat history and sent
// to completion providers.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports provider-side token accounting for one completion.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a provider-neutral completion request. System carries the
// persona and style sections separately from the dialogue turns; providers
// with a single system slot join them via systemText. The penalty knobs
// discourage the model from reopening every reply the same way and are
// ignored by providers that have no equivalent.
type LLMRequest struct {
	Model            string
	System           []string
	Messages         []ChatMessage
	MaxTokens        int32
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// systemText flattens the system sections into one block, or returns ""
// when there is nothing to send.
func (r LLMRequest) systemText() string {
	joined := strings.Join(r.System, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return ""
	}
	return joined
}

// LLMResponse is one completion result.
type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the completion-provider boundary: dialogue turns in, a
// single text completion out, or an error.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
