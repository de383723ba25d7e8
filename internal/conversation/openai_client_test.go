package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type stubChatClient struct {
	response openai.ChatCompletionResponse
	err      error
	lastReq  openai.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return s.response, nil
}

func TestOpenAIClientCompleteMapsRequest(t *testing.T) {
	stub := &stubChatClient{
		response: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Content: "  Ответ готов  "},
					FinishReason: openai.FinishReasonStop,
				},
			},
			Usage: openai.Usage{PromptTokens: 100, CompletionTokens: 42, TotalTokens: 142},
		},
	}
	client := newOpenAILLMClient(stub)

	resp, err := client.Complete(context.Background(), LLMRequest{
		Model:            "gpt-4o-mini",
		System:           []string{"персона", "правила"},
		Messages:         []ChatMessage{{Role: ChatRoleUser, Content: "вопрос"}},
		MaxTokens:        350,
		Temperature:      0.8,
		TopP:             0.9,
		FrequencyPenalty: 0.6,
		PresencePenalty:  0.5,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	req := stub.lastReq
	if req.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem || req.Messages[0].Content != "персона\n\nправила" {
		t.Fatalf("system message not assembled: %#v", req.Messages[0])
	}
	if req.Messages[1].Role != openai.ChatMessageRoleUser || req.Messages[1].Content != "вопрос" {
		t.Fatalf("user message not forwarded: %#v", req.Messages[1])
	}
	if req.MaxTokens != 350 || req.Temperature != 0.8 || req.TopP != 0.9 {
		t.Fatalf("sampling not mapped: %#v", req)
	}
	if req.FrequencyPenalty != 0.6 || req.PresencePenalty != 0.5 {
		t.Fatalf("penalties not mapped: %#v", req)
	}

	if resp.Text != "Ответ готов" {
		t.Fatalf("expected trimmed text, got %q", resp.Text)
	}
	if resp.StopReason != string(openai.FinishReasonStop) {
		t.Fatalf("unexpected stop reason %q", resp.StopReason)
	}
	if resp.Usage.TotalTokens != 142 {
		t.Fatalf("usage not mapped: %#v", resp.Usage)
	}
}

func TestOpenAIClientCompleteNoChoices(t *testing.T) {
	client := newOpenAILLMClient(&stubChatClient{})

	_, err := client.Complete(context.Background(), LLMRequest{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "вопрос"}},
	})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIClientCompletePropagatesError(t *testing.T) {
	client := newOpenAILLMClient(&stubChatClient{err: errors.New("rate limited")})

	_, err := client.Complete(context.Background(), LLMRequest{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "вопрос"}},
	})
	if err == nil {
		t.Fatal("expected wrapped provider error")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("provider error not preserved: %v", err)
	}
}

func TestOpenAIClientCompleteRequiresMessages(t *testing.T) {
	client := newOpenAILLMClient(&stubChatClient{})

	if _, err := client.Complete(context.Background(), LLMRequest{System: []string{"персона"}}); err == nil {
		t.Fatal("expected error for request without messages")
	}
}

func TestNewOpenAILLMClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAILLMClient("   "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
