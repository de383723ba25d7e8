package greenapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"
)

func TestReceiveNotification(t *testing.T) {
	payload := mustLoadFixture(t, "incoming_text.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waInstance1101000001/receiveNotification/token-abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	n, err := client.ReceiveNotification(context.Background())
	if err != nil {
		t.Fatalf("receive notification: %v", err)
	}
	if n == nil {
		t.Fatal("expected a notification")
	}
	if n.ReceiptID != 1234567 {
		t.Fatalf("unexpected receipt id %d", n.ReceiptID)
	}
	if n.Body.TypeWebhook != WebhookIncomingMessage {
		t.Fatalf("unexpected webhook type %s", n.Body.TypeWebhook)
	}
	if n.Body.IDMessage != "F7AEC1B7086ECDC7E6E45923F5EDB825" {
		t.Fatalf("unexpected message id %s", n.Body.IDMessage)
	}
	if n.Body.SenderData.ChatID != "77001112233@c.us" || n.Body.SenderData.Sender != "77001112233@c.us" {
		t.Fatalf("unexpected sender data %#v", n.Body.SenderData)
	}
	text, ok := n.Body.Text()
	if !ok || text != "Привет" {
		t.Fatalf("unexpected text %q ok=%v", text, ok)
	}
}

func TestReceiveNotificationEmptyQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	n, err := client.ReceiveNotification(context.Background())
	if err != nil {
		t.Fatalf("receive notification: %v", err)
	}
	if n != nil {
		t.Fatalf("expected nil notification, got %#v", n)
	}
}

func TestDeleteNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waInstance1101000001/deleteNotification/token-abc/1234567" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	if err := client.DeleteNotification(context.Background(), 1234567); err != nil {
		t.Fatalf("delete notification: %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waInstance1101000001/sendMessage/token-abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"idMessage":"BAE5F4886F6F2D05"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	result, err := client.SendMessage(context.Background(), "77001112233@c.us", "Добрый день!")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.IDMessage != "BAE5F4886F6F2D05" {
		t.Fatalf("unexpected result %#v", result)
	}
	if !strings.Contains(body, `"chatId":"77001112233@c.us"`) || !strings.Contains(body, `"message"`) {
		t.Fatalf("unexpected request body %s", body)
	}
}

func TestSendMessageValidation(t *testing.T) {
	client := newTestClient(t, nil, Config{})
	if _, err := client.SendMessage(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected chat id validation error")
	}
	if _, err := client.SendMessage(context.Background(), "77001112233@c.us", ""); err == nil {
		t.Fatal("expected message validation error")
	}
}

func TestGetStateInstance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waInstance1101000001/getStateInstance/token-abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stateInstance":"authorized"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	state, err := client.GetStateInstance(context.Background())
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state != StateAuthorized {
		t.Fatalf("unexpected state %s", state)
	}
}

func TestSetSettings(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/waInstance1101000001/setSettings/token-abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"saveSettings":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	err := client.SetSettings(context.Background(), Settings{
		IncomingWebhook:    "yes",
		PollMessageWebhook: "yes",
	})
	if err != nil {
		t.Fatalf("set settings: %v", err)
	}
	if !strings.Contains(body, `"incomingWebhook":"yes"`) || !strings.Contains(body, `"pollMessageWebhook":"yes"`) {
		t.Fatalf("unexpected settings body %s", body)
	}
}

func TestNewClientDefaultsAndValidation(t *testing.T) {
	if _, err := New(Config{Token: "t"}); err == nil {
		t.Fatal("expected instance id validation error")
	}
	if _, err := New(Config{InstanceID: "1101000001"}); err == nil {
		t.Fatal("expected token validation error")
	}
	client, err := New(Config{InstanceID: "1101000001", Token: "t"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", client.baseURL)
	}
	if client.httpClient == nil || client.httpClient.Timeout != 15*time.Second {
		t.Fatal("expected default timeout")
	}
	if client.maxRetries != 0 {
		t.Fatal("expected retries to default to 0")
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"server error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"idMessage":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{MaxRetries: 2, Backoff: 5 * time.Millisecond})
	if _, err := client.SendMessage(context.Background(), "77001112233@c.us", "retry"); err != nil {
		t.Fatalf("send message after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"instance not authorized"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	_, err := client.ReceiveNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "instance not authorized") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad route"))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	_, err := client.ReceiveNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad route") {
		t.Fatalf("expected fallback error text, got %v", err)
	}
}

func TestReceiveNotificationDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"receiptId":`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	if _, err := client.ReceiveNotification(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestInvokeContextCancellation(t *testing.T) {
	client := newTestClient(t, nil, Config{})
	client.httpClient = &http.Client{Transport: cancelOnContextTransport{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.invoke(ctx, http.MethodGet, "receiveNotification", "", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
}

func TestInvokeSleepCancellation(t *testing.T) {
	client := newTestClient(t, nil, Config{MaxRetries: 1, Backoff: 50 * time.Millisecond})
	client.httpClient = &http.Client{Transport: serverErrorTransport{}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if _, err := client.invoke(ctx, http.MethodGet, "receiveNotification", "", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation during sleep, got %v", err)
	}
}

func TestShouldRetryLogic(t *testing.T) {
	if !shouldRetry(0, timeoutErr{}) {
		t.Fatal("expected timeout errors to retry")
	}
	if shouldRetry(0, context.Canceled) {
		t.Fatal("context cancel should not retry")
	}
	if !shouldRetry(http.StatusTooManyRequests, nil) {
		t.Fatal("429 should retry")
	}
	if !shouldRetry(http.StatusBadGateway, nil) {
		t.Fatal("5xx should retry")
	}
	if shouldRetry(http.StatusBadRequest, nil) {
		t.Fatal("4xx (except 429) should not retry")
	}
}

func TestAPIErrorFormatting(t *testing.T) {
	withMessage := &apiError{Message: "quota exceeded", StatusCode: 429}
	if !strings.Contains(withMessage.Error(), "quota exceeded") {
		t.Fatal("expected message in error string")
	}
	withError := &apiError{ErrorText: "unauthorized", StatusCode: 401}
	if !strings.Contains(withError.Error(), "unauthorized") {
		t.Fatal("expected error text in error string")
	}
	fallback := &apiError{StatusCode: 500}
	if !strings.Contains(fallback.Error(), "500") {
		t.Fatal("expected status fallback")
	}
}

func TestIsNullBody(t *testing.T) {
	if !isNullBody([]byte("null")) || !isNullBody([]byte(" null\n")) || !isNullBody(nil) {
		t.Fatal("expected null bodies to be detected")
	}
	if isNullBody([]byte(`{"receiptId":1}`)) {
		t.Fatal("expected non-null body")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type cancelOnContextTransport struct{}

func (cancelOnContextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

type serverErrorTransport struct{}

func (serverErrorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, server *httptest.Server, cfg Config) *Client {
	t.Helper()
	if server != nil {
		cfg.BaseURL = server.URL
	}
	cfg.InstanceID = "1101000001"
	cfg.Token = "token-abc"
	cfg.Timeout = 2 * time.Second
	cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func mustLoadFixture(t *testing.T, name string) []byte {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	base := filepath.Dir(filename)
	path := filepath.Join(base, "testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}
