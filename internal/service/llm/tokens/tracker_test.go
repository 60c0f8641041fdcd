package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokensToCost(t *testing.T) {
	tracker := NewBudgetTracker(nil, 10.0)

	tests := []struct {
		name             string
		model            string
		promptTokens     int
		completionTokens int
		wantPrompt       float64
		wantCompletion   float64
	}{
		{
			name:             "gpt-4 pricing",
			model:            "gpt-4",
			promptTokens:     1000,
			completionTokens: 1000,
			wantPrompt:       0.03,
			wantCompletion:   0.06,
		},
		{
			name:             "gpt-3.5-turbo pricing",
			model:            "gpt-3.5-turbo",
			promptTokens:     2000,
			completionTokens: 500,
			wantPrompt:       0.003,
			wantCompletion:   0.001,
		},
		{
			name:             "unknown model falls back to gpt-4",
			model:            "model-that-does-not-exist",
			promptTokens:     1000,
			completionTokens: 0,
			wantPrompt:       0.03,
			wantCompletion:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promptCost, completionCost, totalCost := tracker.TokensToCost(tt.model, tt.promptTokens, tt.completionTokens)
			assert.InDelta(t, tt.wantPrompt, promptCost, 0.0001)
			assert.InDelta(t, tt.wantCompletion, completionCost, 0.0001)
			assert.InDelta(t, tt.wantPrompt+tt.wantCompletion, totalCost, 0.0001)
		})
	}
}

func TestBudgetTracking(t *testing.T) {
	tracker := NewBudgetTracker(nil, 1.0)

	assert.False(t, tracker.IsBudgetExceeded())
	assert.InDelta(t, 1.0, tracker.GetRemainingBudget(), 0.0001)

	err := tracker.RecordUsage(UsageEntry{
		Model:     "gpt-4",
		Provider:  "openai",
		TotalCost: 0.6,
	})
	assert.NoError(t, err)
	assert.False(t, tracker.IsBudgetExceeded())
	assert.InDelta(t, 0.4, tracker.GetRemainingBudget(), 0.0001)

	err = tracker.RecordUsage(UsageEntry{
		Model:     "gpt-4",
		Provider:  "openai",
		TotalCost: 0.5,
	})
	assert.NoError(t, err)
	assert.True(t, tracker.IsBudgetExceeded())
	assert.Equal(t, 0.0, tracker.GetRemainingBudget())
}

func TestBudgetSharedAcrossInstances(t *testing.T) {
	tracker := NewBudgetTracker(nil, 10.0)

	// Spend rolled up by other instances shows through the day counter
	shared := 9.5
	tracker.fetchUsage = func(day string) (float64, bool) {
		return shared, true
	}

	assert.False(t, tracker.IsBudgetExceeded())
	assert.InDelta(t, 0.5, tracker.GetRemainingBudget(), 0.0001)

	shared = 12.0
	assert.True(t, tracker.IsBudgetExceeded())
	assert.Equal(t, 0.0, tracker.GetRemainingBudget())

	// The counter never lowers local accounting below what this
	// instance has already recorded
	local := NewBudgetTracker(nil, 10.0)
	local.fetchUsage = func(day string) (float64, bool) { return 0.0, true }
	err := local.RecordUsage(UsageEntry{Model: "gpt-4", TotalCost: 11.0})
	assert.NoError(t, err)
	assert.True(t, local.IsBudgetExceeded())
}

func TestBudgetDisabled(t *testing.T) {
	tracker := NewBudgetTracker(nil, 0)

	err := tracker.RecordUsage(UsageEntry{Model: "gpt-4", TotalCost: 1000})
	assert.NoError(t, err)
	assert.False(t, tracker.IsBudgetExceeded())
}

func TestBudgetDayRollover(t *testing.T) {
	tracker := NewBudgetTracker(nil, 1.0)

	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return day }
	tracker.currentDay = day.Format("2006-01-02")

	err := tracker.RecordUsage(UsageEntry{Model: "gpt-4", TotalCost: 2.0, Timestamp: day})
	assert.NoError(t, err)
	assert.True(t, tracker.IsBudgetExceeded())

	day = day.Add(24 * time.Hour)
	assert.False(t, tracker.IsBudgetExceeded())
	assert.InDelta(t, 1.0, tracker.GetRemainingBudget(), 0.0001)
}

func TestRecordUsageComputesCost(t *testing.T) {
	tracker := NewBudgetTracker(nil, 10.0)

	err := tracker.RecordUsage(UsageEntry{
		Model:            "gpt-4",
		PromptTokens:     1000,
		CompletionTokens: 1000,
	})
	assert.NoError(t, err)
	assert.InDelta(t, 10.0-0.09, tracker.GetRemainingBudget(), 0.0001)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("word"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestTruncatePromptToFit(t *testing.T) {
	t.Run("short prompt untouched", func(t *testing.T) {
		prompt := "analyze this document"
		assert.Equal(t, prompt, TruncatePromptToFit(prompt, "gpt-4", 1000))
	})

	t.Run("long prompt cut on paragraph boundary", func(t *testing.T) {
		para := strings.Repeat("lorem ipsum dolor sit amet ", 100)
		prompt := para + "\n\n" + para + "\n\n" + para
		result := TruncatePromptToFit(prompt, "gpt-4", 7500)
		assert.Less(t, len(result), len(prompt))
		assert.True(t, strings.HasPrefix(prompt, result))
	})

	t.Run("single oversized paragraph hard cut", func(t *testing.T) {
		prompt := strings.Repeat("a", 100000)
		result := TruncatePromptToFit(prompt, "gpt-4", 4096)
		assert.Equal(t, (8192-4096)*4, len(result))
	})
}
