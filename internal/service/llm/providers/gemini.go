// Package providers contains concrete LLM backends for the generation
// service. Each provider adapts one vendor API to the llm.Provider
// interface; selection between them happens per request.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

// GeminiProvider implements llm.Provider for Google's Gemini API
type GeminiProvider struct {
	apiKey    string
	modelName string
	client    *genai.Client
	logger    llm.Logger
}

// NewGeminiProvider creates a new Gemini provider using the official client
func NewGeminiProvider(ctx context.Context, apiKey string, modelName string, logger llm.Logger) (*GeminiProvider, error) {
	if apiKey == "" || apiKey == "YOUR_GEMINI_API_KEY" {
		return nil, errors.New("a valid Gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
		logger:    logger,
	}, nil
}

// GetName returns the provider name
func (p *GeminiProvider) GetName() string {
	return "gemini"
}

// GetModel returns the configured model name
func (p *GeminiProvider) GetModel() string {
	return p.modelName
}

// GenerateText implements llm.Provider
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string, opts llm.Options) (string, llm.Usage, error) {
	model := p.client.GenerativeModel(p.modelName)

	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.TopP > 0 {
		model.SetTopP(opts.TopP)
	}
	if opts.TopK > 0 {
		model.SetTopK(opts.TopK)
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}

	// Slide decks summarize user documents; don't let the default safety
	// thresholds block ordinary business content
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		p.logger.Error("Gemini API error", "error", err)
		return "", llm.Usage{}, fmt.Errorf("gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", llm.Usage{}, errors.New("no content was generated")
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", llm.Usage{}, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}

	var usage llm.Usage
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	p.logger.Debug("Received response from Gemini", "chars", len(responseText))

	return responseText, usage, nil
}

// Close closes the Gemini client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
