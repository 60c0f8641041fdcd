package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

func completionBody(content string) ChatCompletionResponse {
	var resp ChatCompletionResponse
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{})
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = content
	resp.Usage.PromptTokens = 12
	resp.Usage.CompletionTokens = 34
	return resp
}

func TestOpenAIGenerateText(t *testing.T) {
	var gotAuth string
	var gotReq ChatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(completionBody("slide outline"))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", "gpt-4-turbo", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	provider.endpoint = server.URL

	text, usage, err := provider.GenerateText(context.Background(), "make slides", llm.Options{Temperature: 0.7, MaxTokens: 512})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "slide outline" {
		t.Errorf("got text %q", text)
	}
	if usage.PromptTokens != 12 || usage.CompletionTokens != 34 {
		t.Errorf("usage not parsed: %+v", usage)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header %q", gotAuth)
	}
	if gotReq.Model != "gpt-4-turbo" {
		t.Errorf("model %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "make slides" {
		t.Errorf("messages %+v", gotReq.Messages)
	}
}

func TestAzureOpenAIGenerateText(t *testing.T) {
	var gotKey string
	var gotPath string
	var gotReq ChatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(completionBody("ok"))
	}))
	defer server.Close()

	provider, err := NewAzureOpenAIProvider("azure-key", AzureConfig{
		Endpoint:   server.URL,
		Deployment: "gpt4-deck",
		APIVersion: "2024-02-01",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := provider.GenerateText(context.Background(), "prompt", llm.Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "azure-key" {
		t.Errorf("api-key header %q", gotKey)
	}
	if gotPath != "/openai/deployments/gpt4-deck/chat/completions?api-version=2024-02-01" {
		t.Errorf("path %q", gotPath)
	}
	if gotReq.Model != "" {
		t.Errorf("azure request should omit model, got %q", gotReq.Model)
	}
	if provider.GetName() != "azure-openai" {
		t.Errorf("name %q", provider.GetName())
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider("sk-test", "", nil)
	provider.endpoint = server.URL

	if _, _, err := provider.GenerateText(context.Background(), "prompt", llm.Options{}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestProviderValidation(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-4", nil); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewAzureOpenAIProvider("key", AzureConfig{}, nil); err == nil {
		t.Error("expected error for missing Azure endpoint")
	}
}
