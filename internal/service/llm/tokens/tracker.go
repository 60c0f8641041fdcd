package tokens

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
)

// Models maps model names to pricing information
var Models = map[string]ModelInfo{
	"gpt-4": {
		TokensPerPromptDollar: 1000.0 / 0.03,
		TokensPerOutputDollar: 1000.0 / 0.06,
		MaxContextTokens:      8192,
		Name:                  "gpt-4",
		Provider:              "openai",
	},
	"gpt-4-turbo": {
		TokensPerPromptDollar: 1000.0 / 0.01,
		TokensPerOutputDollar: 1000.0 / 0.03,
		MaxContextTokens:      128000,
		Name:                  "gpt-4-turbo",
		Provider:              "openai",
	},
	"gpt-3.5-turbo": {
		TokensPerPromptDollar: 1000.0 / 0.0015,
		TokensPerOutputDollar: 1000.0 / 0.002,
		MaxContextTokens:      16385,
		Name:                  "gpt-3.5-turbo",
		Provider:              "openai",
	},
	"gemini-1.5-flash": {
		TokensPerPromptDollar: 1000.0 / 0.00035,
		TokensPerOutputDollar: 1000.0 / 0.00035,
		MaxContextTokens:      1000000,
		Name:                  "gemini-1.5-flash",
		Provider:              "gemini",
	},
	"gemini-1.5-pro": {
		TokensPerPromptDollar: 1000.0 / 0.00175,
		TokensPerOutputDollar: 1000.0 / 0.00175,
		MaxContextTokens:      1000000,
		Name:                  "gemini-1.5-pro",
		Provider:              "gemini",
	},
	"gemini-2.5-flash": {
		TokensPerPromptDollar: 1000.0 / 0.0003,
		TokensPerOutputDollar: 1000.0 / 0.0025,
		MaxContextTokens:      1000000,
		Name:                  "gemini-2.5-flash",
		Provider:              "gemini",
	},
}

// ModelInfo contains pricing information for a model
type ModelInfo struct {
	TokensPerPromptDollar float64
	TokensPerOutputDollar float64
	MaxContextTokens      int
	Name                  string
	Provider              string
}

// UsageEntry represents a token usage entry
type UsageEntry struct {
	Timestamp        time.Time
	Model            string
	Provider         string
	PromptTokens     int
	CompletionTokens int
	PromptCost       float64
	CompletionCost   float64
	TotalCost        float64
	RequestID        string
}

// BudgetTracker tracks token usage against a daily spending cap. Usage is
// rolled up in redis per calendar day so multiple instances share the cap;
// without redis the tracker falls back to process-local accounting.
type BudgetTracker struct {
	redisClient *redis.Client
	keyPrefix   string
	dailyBudget float64
	currentDay  string
	dailyUsage  float64
	mu          sync.RWMutex
	now         func() time.Time
	fetchUsage  func(day string) (float64, bool)
}

// NewBudgetTracker creates a new budget tracker
func NewBudgetTracker(client *redis.Client, dailyBudget float64) *BudgetTracker {
	tracker := &BudgetTracker{
		redisClient: client,
		keyPrefix:   "llm_tokens:",
		dailyBudget: dailyBudget,
		now:         time.Now,
	}
	tracker.fetchUsage = tracker.redisUsage
	tracker.currentDay = tracker.now().Format("2006-01-02")
	tracker.usage()
	return tracker
}

// TokensToCost converts tokens to cost for a given model
func (t *BudgetTracker) TokensToCost(model string, promptTokens, completionTokens int) (float64, float64, float64) {
	modelInfo, ok := Models[model]
	if !ok {
		// GPT-4 pricing as a conservative fallback
		modelInfo = Models["gpt-4"]
	}

	promptCost := float64(promptTokens) / modelInfo.TokensPerPromptDollar
	completionCost := float64(completionTokens) / modelInfo.TokensPerOutputDollar

	return promptCost, completionCost, promptCost + completionCost
}

// RecordUsage records token usage
func (t *BudgetTracker) RecordUsage(entry UsageEntry) error {
	if entry.TotalCost == 0 {
		entry.PromptCost, entry.CompletionCost, entry.TotalCost =
			t.TokensToCost(entry.Model, entry.PromptTokens, entry.CompletionTokens)
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = t.now()
	}
	day := entry.Timestamp.Format("2006-01-02")

	t.mu.Lock()
	if day != t.currentDay {
		t.currentDay = day
		t.dailyUsage = 0
	}
	t.dailyUsage += entry.TotalCost
	t.mu.Unlock()

	if t.redisClient != nil {
		ctx := context.Background()
		key := t.keyPrefix + day
		pipe := t.redisClient.Pipeline()
		pipe.IncrByFloat(ctx, key, entry.TotalCost)
		pipe.Expire(ctx, key, 48*time.Hour)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

// IsBudgetExceeded checks if the daily budget is exhausted
func (t *BudgetTracker) IsBudgetExceeded() bool {
	if t.dailyBudget <= 0 {
		return false
	}
	return t.usage() >= t.dailyBudget
}

// GetRemainingBudget returns the remaining daily budget
func (t *BudgetTracker) GetRemainingBudget() float64 {
	used := t.usage()
	if used >= t.dailyBudget {
		return 0
	}
	return t.dailyBudget - used
}

// usage rolls local accounting over on day change and returns today's
// spend. The shared redis counter is consulted on every call so spend
// from other instances counts against the cap; local accounting stands
// in when redis is absent or unreachable.
func (t *BudgetTracker) usage() float64 {
	day := t.now().Format("2006-01-02")

	t.mu.Lock()
	defer t.mu.Unlock()

	if day != t.currentDay {
		t.currentDay = day
		t.dailyUsage = 0
	}
	if shared, ok := t.fetchUsage(day); ok && shared > t.dailyUsage {
		t.dailyUsage = shared
	}
	return t.dailyUsage
}

// redisUsage reads one day's rolled-up spend from redis
func (t *BudgetTracker) redisUsage(day string) (float64, bool) {
	if t.redisClient == nil {
		return 0, false
	}

	val, err := t.redisClient.Get(context.Background(), t.keyPrefix+day).Float64()
	if err != nil {
		return 0, false
	}
	return val, true
}

// EstimateTokens estimates the number of tokens in a string. Roughly 4
// characters per token for English text; models tokenize differently.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// TruncatePromptToFit ensures a prompt fits within a model's context
// window, cutting on paragraph boundaries.
func TruncatePromptToFit(prompt string, modelName string, reserveForCompletion int) string {
	modelInfo, ok := Models[modelName]
	if !ok {
		modelInfo = Models["gpt-3.5-turbo"]
	}

	availableTokens := modelInfo.MaxContextTokens - reserveForCompletion
	if EstimateTokens(prompt) <= availableTokens {
		return prompt
	}

	charLimit := availableTokens * 4
	parts := strings.Split(prompt, "\n\n")
	result := ""

	for _, part := range parts {
		if len(result)+len(part)+2 > charLimit {
			break
		}
		if result != "" {
			result += "\n\n"
		}
		result += part
	}

	if result == "" && len(prompt) > charLimit {
		result = prompt[:charLimit]
	}

	return result
}
