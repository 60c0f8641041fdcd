package workflow

import (
	"context"
	"errors"
	"time"
)

// AssemblyAgent merges the outputs of all previous stages into the final
// deck. It makes no generation requests.
type AssemblyAgent struct{}

func NewAssemblyAgent() *AssemblyAgent {
	return &AssemblyAgent{}
}

func (a *AssemblyAgent) Name() string { return "Deck Assembly" }
func (a *AssemblyAgent) Step() int    { return 5 }

func (a *AssemblyAgent) Run(ctx context.Context, state *State) error {
	if len(state.Slides) == 0 {
		return errors.New("no slides to assemble")
	}

	// Attach visual specs to their slides by number
	specByNumber := make(map[int]VisualSpec, len(state.Visual.Specs))
	for _, spec := range state.Visual.Specs {
		specByNumber[spec.SlideNumber] = spec
	}
	for i := range state.Slides {
		if spec, ok := specByNumber[state.Slides[i].Number]; ok {
			state.Slides[i].VisualPrompt = spec.Prompt
			state.Slides[i].StyleNotes = spec.StyleNotes
		}
	}

	deck := &Deck{
		Title:             state.Analysis.Title,
		CreatedAt:         time.Now().UTC(),
		Themes:            state.Analysis.Themes,
		EstimatedDuration: state.Structure.EstimatedDuration,
		Palette:           state.Visual.Palette,
		Fonts:             state.Visual.Fonts,
		Guidelines:        state.Visual.Guidelines,
		Slides:            state.Slides,
		Quality:           qualityMetrics(state),
	}

	state.Deck = deck
	return nil
}

func qualityMetrics(state *State) QualityMetrics {
	totalBullets := 0
	for _, slide := range state.Slides {
		totalBullets += len(slide.Bullets)
	}

	metrics := QualityMetrics{TotalBullets: totalBullets}
	if planned := len(state.Structure.Slides); planned > 0 {
		metrics.Completeness = float64(len(state.Slides)) / float64(planned)
	}
	if len(state.Slides) > 0 {
		metrics.AverageBullets = float64(totalBullets) / float64(len(state.Slides))
	}
	return metrics
}
