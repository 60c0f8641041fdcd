package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

// ProgressFunc receives each step result as the pipeline advances
type ProgressFunc func(result StepResult)

// Outcome is the result of a full pipeline run. On failure Deck is nil and
// Steps holds the results up to and including the failed step.
type Outcome struct {
	Status       Status        `json:"status"`
	Deck         *Deck         `json:"deck,omitempty"`
	Steps        []StepResult  `json:"steps"`
	TotalTime    time.Duration `json:"total_time"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Coordinator runs the agents strictly in step order. A stage only starts
// after the previous one completed; the first failure aborts the run.
type Coordinator struct {
	agents   []Agent
	logger   llm.Logger
	progress ProgressFunc
}

// CoordinatorOptions configures a pipeline run
type CoordinatorOptions struct {
	Generator        TextGenerator
	MaxContentSlides int
	Logger           llm.Logger
	Progress         ProgressFunc
}

// NewCoordinator builds the standard five-stage pipeline
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.MaxContentSlides <= 0 {
		opts.MaxContentSlides = 3
	}
	if opts.Logger == nil {
		opts.Logger = &llm.DefaultLogger{}
	}

	return &Coordinator{
		agents: []Agent{
			NewAnalysisAgent(opts.Generator, opts.MaxContentSlides, opts.Logger),
			NewStructureAgent(opts.Generator, opts.MaxContentSlides, opts.Logger),
			NewVisualAgent(opts.Generator, opts.Logger),
			NewContentAgent(opts.Generator, opts.Logger),
			NewAssemblyAgent(),
		},
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// Agents returns the pipeline stages in execution order
func (c *Coordinator) Agents() []Agent {
	return c.agents
}

// RunStep executes a single pipeline stage against existing state. Earlier
// stages must already have populated the state fields the agent reads.
func (c *Coordinator) RunStep(ctx context.Context, step int, state *State) (StepResult, error) {
	var agent Agent
	for _, a := range c.agents {
		if a.Step() == step {
			agent = a
			break
		}
	}
	if agent == nil {
		return StepResult{}, fmt.Errorf("no pipeline stage numbered %d", step)
	}

	stepStart := time.Now()
	err := agent.Run(ctx, state)

	result := StepResult{
		StepNumber:     agent.Step(),
		StepName:       agent.Name(),
		Status:         StatusCompleted,
		ProcessingTime: time.Since(stepStart),
		Timestamp:      time.Now().UTC(),
	}
	if err != nil {
		result.Status = StatusFailed
		result.ErrorMessage = err.Error()
	}
	return result, err
}

// Run executes the full pipeline against a document
func (c *Coordinator) Run(ctx context.Context, doc *document.Content) (*Outcome, error) {
	start := time.Now()
	state := &State{Document: doc}
	outcome := &Outcome{Status: StatusRunning}

	c.logger.Info("Starting generation workflow", "title", doc.Title, "steps", len(c.agents))

	for _, agent := range c.agents {
		stepStart := time.Now()

		err := agent.Run(ctx, state)

		result := StepResult{
			StepNumber:     agent.Step(),
			StepName:       agent.Name(),
			Status:         StatusCompleted,
			ProcessingTime: time.Since(stepStart),
			Timestamp:      time.Now().UTC(),
		}
		if err != nil {
			result.Status = StatusFailed
			result.ErrorMessage = err.Error()
		}

		outcome.Steps = append(outcome.Steps, result)
		if c.progress != nil {
			c.progress(result)
		}

		if err != nil {
			outcome.Status = StatusFailed
			outcome.ErrorMessage = fmt.Sprintf("step %d (%s) failed: %v", agent.Step(), agent.Name(), err)
			outcome.TotalTime = time.Since(start)

			c.logger.Error("Workflow failed", "step", agent.Step(), "error", err)
			return outcome, fmt.Errorf("step %d (%s): %w", agent.Step(), agent.Name(), err)
		}

		c.logger.Info("Workflow step completed",
			"step", agent.Step(),
			"name", agent.Name(),
			"time", result.ProcessingTime)
	}

	outcome.Status = StatusCompleted
	outcome.Deck = state.Deck
	outcome.TotalTime = time.Since(start)

	c.logger.Info("Workflow completed",
		"slides", len(state.Deck.Slides),
		"time", outcome.TotalTime)

	return outcome, nil
}
