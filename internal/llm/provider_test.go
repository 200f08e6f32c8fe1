package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "A summary."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "gpt-4o-mini", srv.URL+"/v1", 5*time.Second)
	defer c.Close()

	resp, err := c.Complete(context.Background(), Request{
		System:      "sys",
		Prompt:      "summarize",
		Temperature: 0.4,
		MaxTokens:   200,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "A summary." {
		t.Errorf("expected text %q, got %q", "A summary.", resp.Text)
	}
	if resp.Usage.PromptTokens != 120 || resp.Usage.CompletionTokens != 30 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if got["model"] != "gpt-4o-mini" {
		t.Errorf("expected model in request, got %v", got["model"])
	}
	if mt, _ := got["max_tokens"].(float64); mt != 200 {
		t.Errorf("expected max_tokens 200, got %v", got["max_tokens"])
	}
	if msgs, _ := got["messages"].([]any); len(msgs) != 2 {
		t.Errorf("expected system and user messages, got %v", got["messages"])
	}
	if c.Name() != "openai/gpt-4o-mini" {
		t.Errorf("unexpected name %q", c.Name())
	}
}

func TestOpenAIRateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"message": "rate limited", "type": "rate_limit_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "gpt-4o-mini", srv.URL+"/v1", 5*time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestOpenAIBadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "gpt-4o-mini", srv.URL+"/v1", 5*time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "openai:") {
		t.Errorf("expected provider prefix, got %q", err.Error())
	}
}

func TestAnthropicComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Key facts."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 80, "output_tokens": 20}
		}`)
	}))
	defer srv.Close()

	c := NewAnthropic("test-key", "claude-3-5-haiku-latest", srv.URL, 5*time.Second)
	resp, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "extract", Temperature: 0.3, MaxTokens: 400})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Key facts." {
		t.Errorf("expected text %q, got %q", "Key facts.", resp.Text)
	}
	if resp.Usage.PromptTokens != 80 || resp.Usage.CompletionTokens != 20 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if mt, _ := got["max_tokens"].(float64); mt != 400 {
		t.Errorf("expected max_tokens 400, got %v", got["max_tokens"])
	}
}

func TestAnthropicServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"type": "error", "error": {"type": "overloaded_error", "message": "overloaded"}}`)
	}))
	defer srv.Close()

	c := NewAnthropic("test-key", "claude-3-5-haiku-latest", srv.URL, 5*time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(context.Background(), ProviderConfig{Provider: "nope"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderWrapsWithStats(t *testing.T) {
	c, err := NewProvider(context.Background(), ProviderConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "k"}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer c.Close()
	if c.Stats() == nil {
		t.Fatal("expected stats to be initialized")
	}
	if c.Name() != "openai/gpt-4o-mini" {
		t.Errorf("unexpected name %q", c.Name())
	}
}
