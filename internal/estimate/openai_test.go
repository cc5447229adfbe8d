package estimate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func openAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Error("Expected JSON response format")
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Miracle cure") {
			t.Errorf("Expected the text in the user message, got %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIEstimator_Success(t *testing.T) {
	server := openAIServer(t, `{"fake_probability": 0.8}`)
	defer server.Close()

	est, err := NewOpenAIEstimator(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create estimator: %v", err)
	}

	got, err := est.Estimate(context.Background(), "Miracle cure found")
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != 0.8 {
		t.Errorf("Expected 0.8, got %v", got)
	}
}

func TestOpenAIEstimator_OutOfRange(t *testing.T) {
	server := openAIServer(t, `{"fake_probability": 3}`)
	defer server.Close()

	est, _ := NewOpenAIEstimator(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if _, err := est.Estimate(context.Background(), "Miracle cure found"); err == nil {
		t.Fatal("Expected error for out of range estimate, got nil")
	}
}

func TestOpenAIEstimator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	est, _ := NewOpenAIEstimator(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if _, err := est.Estimate(context.Background(), "text"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIEstimator_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	est, _ := NewOpenAIEstimator(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := est.Estimate(ctx, "text"); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestNewOpenAIEstimator_MissingKey(t *testing.T) {
	if _, err := NewOpenAIEstimator(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}
