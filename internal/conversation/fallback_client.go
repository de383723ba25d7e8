package conversation

import (
	"context"

	"github.com/foreveruup/wp-bot/pkg/logging"
)

// FallbackLLMClient chains two completion providers: every request goes to
// the primary, and only a primary failure is retried once against the
// fallback. With no fallback configured it behaves as the primary alone.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient wraps primary with an optional fallback provider.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if primary == nil {
		panic("conversation: primary llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete asks the primary provider first and falls back on failure. When
// both providers fail, the fallback's error is returned as the final word.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, primaryErr := c.primary.Complete(ctx, req)
	if primaryErr == nil {
		return resp, nil
	}

	if c.fallback == nil {
		return LLMResponse{}, primaryErr
	}

	c.logger.Warn("primary completion provider failed, trying fallback",
		"error", primaryErr,
	)

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback completion provider failed too",
			"primary_error", primaryErr,
			"fallback_error", fallbackErr,
		)
		return LLMResponse{}, fallbackErr
	}

	c.logger.Info("fallback completion provider answered")
	return resp, nil
}
