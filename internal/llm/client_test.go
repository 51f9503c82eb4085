package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	_, err = NewClient(Config{BaseURL: "openrouter.ai/api/v1"}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("expected scheme validation error, got nil")
	}
}

func TestChatCompletionSuccess(t *testing.T) {
	t.Parallel()

	var gotReq providerChatRequest
	var gotAuth, gotReferer, gotTitle string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}

		resp := providerChatResponse{
			ID:      "gen-1",
			Object:  "chat.completion",
			Created: time.Unix(1_700_000_000, 0).Unix(),
			Model:   "openai/gpt-oss-20b:free",
			Choices: []providerChatChoice{
				{
					Index: 0,
					Message: ChatMessage{
						Role:    RoleAssistant,
						Content: "1. What is a goroutine?",
					},
					FinishReason: "stop",
				},
			},
			Usage: &providerUsage{
				PromptTokens:     3,
				CompletionTokens: 2,
				TotalTokens:      5,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL + "/api/v1/",
		Headers: map[string]string{
			"HTTP-Referer": "http://localhost:5000",
			"X-Title":      "InterViewAI",
		},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	req := &ChatRequest{
		Model: "openai/gpt-oss-20b:free",
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "ping"},
		},
		Temperature: 0.6,
		MaxTokens:   400,
		APIKey:      "sk-or-test",
	}

	resp, err := client.ChatCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}

	if gotAuth != "Bearer sk-or-test" {
		t.Fatalf("unexpected Authorization header: %s", gotAuth)
	}
	if gotReferer != "http://localhost:5000" || gotTitle != "InterViewAI" {
		t.Fatalf("attribution headers missing: referer=%q title=%q", gotReferer, gotTitle)
	}
	if gotReq.Model != req.Model || gotReq.MaxTokens != 400 {
		t.Fatalf("unexpected request body: %#v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "ping" {
		t.Fatalf("unexpected request messages: %#v", gotReq.Messages)
	}

	if resp.Content() != "1. What is a goroutine?" {
		t.Fatalf("unexpected response message: %#v", resp.Choices)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 5 {
		t.Fatalf("usage not mapped correctly: %#v", resp.Usage)
	}
}

func TestChatCompletionUsesPerCallKey(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	for _, key := range []string{"k1", "k2"} {
		_, err := client.ChatCompletion(context.Background(), &ChatRequest{
			Model:    "m",
			Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
			APIKey:   key,
		})
		if err != nil {
			t.Fatalf("ChatCompletion: %v", err)
		}
	}

	if len(seen) != 2 || seen[0] != "Bearer k1" || seen[1] != "Bearer k2" {
		t.Fatalf("unexpected keys sent: %v", seen)
	}
}

func TestChatCompletionRateLimited(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"Rate limit exceeded: free-models-per-day","code":429}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "deepseek/deepseek-r1:free",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		APIKey:   "k",
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if !apiErr.RateLimited() {
		t.Fatalf("429 should be classified as rate limited")
	}
	if apiErr.RetryAfter != 30*time.Second {
		t.Fatalf("unexpected RetryAfter: %v", apiErr.RetryAfter)
	}
	if calls != 1 {
		t.Fatalf("client must not retry on its own, got %d calls", calls)
	}
}

func TestChatCompletionErrorInOKBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"error":{"message":"Provider returned error","code":502}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "m",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		APIKey:   "k",
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 502 || apiErr.RateLimited() {
		t.Fatalf("unexpected classification: %#v", apiErr)
	}
}

func TestChatCompletionPlainTextError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "m",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		APIKey:   "k",
	})
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("expected 503 error carrying body text, got %v", err)
	}
}

func TestChatCompletionValidationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called for invalid request")
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "m",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestAPIErrorRateLimitedByMessage(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: 400, Message: "Rate limit exceeded for this key"}
	if !err.RateLimited() {
		t.Fatalf("message mentioning rate limit should classify as rate limited")
	}
	if (&APIError{StatusCode: 500, Message: "boom"}).RateLimited() {
		t.Fatalf("500 should not classify as rate limited")
	}
}

func closeClient(c Client) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
