package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

const (
	openAIAPIURL = "https://api.openai.com/v1/chat/completions"

	systemPrompt = "You are an expert presentation designer who turns documents into clear, well-structured slide decks."
)

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest represents the request to the chat completion API
type ChatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	TopP        float32   `json:"top_p,omitempty"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse represents the response from the chat completion API
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int    `json:"created"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIProvider implements llm.Provider against the OpenAI chat
// completions API. With AzureConfig set it talks to an Azure OpenAI
// deployment instead, which uses a different URL scheme and auth header.
type OpenAIProvider struct {
	apiKey     string
	model      string
	endpoint   string
	azure      *AzureConfig
	httpClient *http.Client
	logger     llm.Logger
}

// AzureConfig holds Azure OpenAI deployment settings
type AzureConfig struct {
	Endpoint   string
	Deployment string
	APIVersion string
}

// NewOpenAIProvider creates a provider for the public OpenAI API
func NewOpenAIProvider(apiKey string, model string, logger llm.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("a valid OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4-turbo"
	}

	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   openAIAPIURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

// NewAzureOpenAIProvider creates a provider for an Azure OpenAI deployment
func NewAzureOpenAIProvider(apiKey string, azure AzureConfig, logger llm.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("a valid Azure OpenAI API key is required")
	}
	if azure.Endpoint == "" || azure.Deployment == "" {
		return nil, errors.New("Azure OpenAI endpoint and deployment are required")
	}

	if azure.APIVersion == "" {
		azure.APIVersion = "2024-02-01"
	}

	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(azure.Endpoint, "/"), azure.Deployment, azure.APIVersion)

	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      azure.Deployment,
		endpoint:   endpoint,
		azure:      &azure,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

// GetName returns the provider name
func (p *OpenAIProvider) GetName() string {
	if p.azure != nil {
		return "azure-openai"
	}
	return "openai"
}

// GetModel returns the configured model or deployment name
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// GenerateText implements llm.Provider
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string, opts llm.Options) (string, llm.Usage, error) {
	req := ChatCompletionRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	}
	// Azure routes by deployment in the URL, not by model field
	if p.azure == nil {
		req.Model = p.model
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", llm.Usage{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", llm.Usage{}, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if p.azure != nil {
		httpReq.Header.Set("api-key", p.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.Usage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		p.logger.Error("OpenAI API error", "status", resp.Status)
		return "", llm.Usage{}, fmt.Errorf("OpenAI API error: %s - %s", resp.Status, string(body))
	}

	var result ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", llm.Usage{}, err
	}

	if len(result.Choices) == 0 {
		return "", llm.Usage{}, errors.New("no content was generated")
	}

	usage := llm.Usage{
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
	}

	return result.Choices[0].Message.Content, usage, nil
}

// Close is a no-op for the HTTP-based provider
func (p *OpenAIProvider) Close() error {
	return nil
}
