package greenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"
)

const (
	defaultBaseURL   = "https://api.green-api.com"
	defaultUserAgent = "wp-bot/0.1"
)

// Config controls how the Green API client behaves.
type Config struct {
	BaseURL    string
	InstanceID string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps the Green API instance endpoints the bot needs. The auth
// token travels in the URL path, so request URLs are never logged.
type Client struct {
	instanceID string
	token      string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.InstanceID) == "" {
		return nil, errors.New("greenapi: instance id is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("greenapi: token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			// receiveNotification holds the connection open while the
			// queue is empty, so the default is generous.
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		instanceID: strings.TrimSpace(cfg.InstanceID),
		token:      strings.TrimSpace(cfg.Token),
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// ReceiveNotification fetches the oldest pending notification, or nil when
// the queue is empty. The gateway hands out one notification per call.
func (c *Client) ReceiveNotification(ctx context.Context) (*Notification, error) {
	data, err := c.invoke(ctx, http.MethodGet, "receiveNotification", "", nil)
	if err != nil {
		return nil, err
	}
	if isNullBody(data) {
		return nil, nil
	}
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("greenapi: decode notification: %w", err)
	}
	return &n, nil
}

// DeleteNotification acknowledges a notification by receipt id. Skipping the
// acknowledgement makes the gateway redeliver the same notification.
func (c *Client) DeleteNotification(ctx context.Context, receiptID int) error {
	_, err := c.invoke(ctx, http.MethodDelete, "deleteNotification", strconv.Itoa(receiptID), nil)
	return err
}

// SendMessage sends a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, message string) (*SendMessageResult, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, errors.New("greenapi: chat id is required")
	}
	if message == "" {
		return nil, errors.New("greenapi: message is required")
	}
	body, err := json.Marshal(struct {
		ChatID  string `json:"chatId"`
		Message string `json:"message"`
	}{
		ChatID:  chatID,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("greenapi: marshal send body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "sendMessage", "", body)
	if err != nil {
		return nil, err
	}
	var result SendMessageResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("greenapi: decode send result: %w", err)
	}
	return &result, nil
}

// GetStateInstance reports the current authorization state of the instance.
func (c *Client) GetStateInstance(ctx context.Context) (string, error) {
	data, err := c.invoke(ctx, http.MethodGet, "getStateInstance", "", nil)
	if err != nil {
		return "", err
	}
	var state StateInstance
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("greenapi: decode state: %w", err)
	}
	return state.State, nil
}

// SetSettings applies instance settings. The gateway answers asynchronously;
// only the request acceptance is reported here.
func (c *Client) SetSettings(ctx context.Context, settings Settings) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("greenapi: marshal settings: %w", err)
	}
	_, err = c.invoke(ctx, http.MethodPost, "setSettings", "", body)
	return err
}

func (c *Client) invoke(ctx context.Context, httpMethod, apiMethod, suffix string, body []byte) ([]byte, error) {
	fullURL := c.buildURL(apiMethod, suffix)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, httpMethod, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("greenapi: build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == c.maxRetries {
				return nil, fmt.Errorf("greenapi: http error: %w", err)
			}
			lastErr = err
			c.logRetry(apiMethod, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("greenapi: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := decodeAPIError(resp.StatusCode, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = apiErr
			c.logRetry(apiMethod, attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("greenapi: request failed without response")
}

// buildURL assembles {base}/waInstance{id}/{method}/{token}[/{suffix}].
func (c *Client) buildURL(apiMethod, suffix string) string {
	full := c.baseURL + "/waInstance" + c.instanceID + "/" + apiMethod + "/" + c.token
	if suffix != "" {
		full = full + "/" + suffix
	}
	return full
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(apiMethod string, attempt int, status int, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("green api retry",
		"method", apiMethod,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status <= 599 {
		return true
	}
	return false
}

func isNullBody(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

type apiError struct {
	StatusCode  int    `json:"-"`
	ErrorText   string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("greenapi: %s (status=%d)", e.Message, e.StatusCode)
	}
	if e.ErrorText != "" {
		return fmt.Sprintf("greenapi: %s (status=%d)", e.ErrorText, e.StatusCode)
	}
	if e.Description != "" {
		return fmt.Sprintf("greenapi: %s (status=%d)", e.Description, e.StatusCode)
	}
	return fmt.Sprintf("greenapi: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &apiError{StatusCode: status, Description: strings.TrimSpace(string(body))}
	}
	parsed.StatusCode = status
	return &parsed
}
