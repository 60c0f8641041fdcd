// Package workflow implements the sequential presentation generation
// pipeline: document analysis, structure planning, visual specification,
// slide content generation and final assembly. Each stage consumes the
// accumulated state of the previous ones; stages never run out of order.
package workflow

import (
	"context"
	"time"

	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

// Status represents the execution status of a workflow step
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepResult captures the outcome of a single workflow step
type StepResult struct {
	StepNumber     int           `json:"step_number"`
	StepName       string        `json:"step_name"`
	Status         Status        `json:"status"`
	ProcessingTime time.Duration `json:"processing_time"`
	Timestamp      time.Time     `json:"timestamp"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// TextGenerator abstracts the LLM service for the workflow. Implementations
// are expected to handle caching, rate limiting and retries internally;
// agents treat a returned error as "use the fallback path", not as fatal.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

// ServiceGenerator adapts llm.Service to the TextGenerator interface with a
// fixed provider choice
type ServiceGenerator struct {
	Service  *llm.Service
	Provider string
}

func (g *ServiceGenerator) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	result, err := g.Service.Generate(ctx, g.Provider, prompt, opts)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// State accumulates the outputs of completed stages. Fields are filled in
// stage order and never mutated by later stages, except Slides which
// assembly enriches with visual specs.
type State struct {
	Document  *document.Content
	Analysis  *Analysis
	Structure *Structure
	Visual    *Visual
	Slides    []SlideContent
	Deck      *Deck
}

// Agent is a single stage of the generation pipeline
type Agent interface {
	// Name returns the human-readable agent name
	Name() string

	// Step returns the 1-based position in the pipeline
	Step() int

	// Run executes the stage against the accumulated state
	Run(ctx context.Context, state *State) error
}
