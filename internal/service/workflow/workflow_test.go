package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

// scriptedGenerator answers prompts by matching on the role line each
// prompt opens with
type scriptedGenerator struct {
	err   error
	calls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	switch {
	case strings.Contains(prompt, "document analyst"):
		return `{"themes": ["Technology", "Data & Analytics"], "summary": "A short summary.", "audience": "engineers", "tone": "technical", "recommended_slides": 5}`, nil
	case strings.Contains(prompt, "presentation designer"):
		return `{"approach": "narrative", "slides": [
			{"number": 1, "type": "title", "title": "Platform Overview", "subtitle": "Key Insights", "layout": "title"},
			{"number": 2, "type": "content", "title": "Architecture", "layout": "bullets", "points": ["Service mesh", "Event bus"]},
			{"number": 3, "type": "content", "title": "Data Flow", "layout": "two-column", "points": ["Ingest", "Transform"]},
			{"number": 4, "type": "conclusion", "title": "Takeaways", "layout": "bullets", "points": ["Adopt incrementally"]}
		]}`, nil
	case strings.Contains(prompt, "presentation visuals"):
		return `{"palette": ["#1E3A8A", "#3B82F6"], "fonts": {"heading": "Inter", "body": "Inter"}, "guidelines": "minimal",
			"specs": [
				{"slide_number": 1, "prompt": "abstract cover", "style_notes": "dark"},
				{"slide_number": 2, "prompt": "mesh diagram", "style_notes": "dark"},
				{"slide_number": 3, "prompt": "pipeline art", "style_notes": "dark"},
				{"slide_number": 4, "prompt": "summary art", "style_notes": "dark"}
			]}`, nil
	case strings.Contains(prompt, "opening slide"):
		return `{"title": "Platform Overview", "subtitle": "From ingest to insight", "speaker_notes": "Welcome everyone."}`, nil
	case strings.Contains(prompt, "closing slide"):
		return `{"title": "Takeaways", "bullets": ["Adopt incrementally", "Measure everything"], "key_message": "Start small.", "speaker_notes": "Open for questions."}`, nil
	default:
		return `{"title": "Detail", "bullets": ["First point", "Second point"], "key_message": "It works.", "speaker_notes": "Explain the diagram."}`, nil
	}
}

func testDocument() *document.Content {
	text := "INTRODUCTION\nOur technology platform processes data at scale. " +
		"The analytics layer delivers key insights to every team.\n" +
		"ARCHITECTURE\nThe system is essential for daily operations. " +
		"Automation reduces manual process work significantly."
	doc, _ := document.FromText("Platform Overview", text, document.SourceText)
	return doc
}

func newTestCoordinator(gen TextGenerator) (*Coordinator, *[]StepResult) {
	var steps []StepResult
	c := NewCoordinator(CoordinatorOptions{
		Generator:        gen,
		MaxContentSlides: 3,
		Logger:           nopLogger{},
		Progress: func(result StepResult) {
			steps = append(steps, result)
		},
	})
	return c, &steps
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func TestCoordinatorRun(t *testing.T) {
	gen := &scriptedGenerator{}
	coordinator, progress := newTestCoordinator(gen)

	outcome, err := coordinator.Run(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusCompleted {
		t.Errorf("status = %s", outcome.Status)
	}
	if len(outcome.Steps) != 5 {
		t.Fatalf("expected 5 step results, got %d", len(outcome.Steps))
	}
	for i, step := range outcome.Steps {
		if step.Status != StatusCompleted {
			t.Errorf("step %d status = %s", i+1, step.Status)
		}
		if step.StepNumber != i+1 {
			t.Errorf("step order broken: position %d has number %d", i, step.StepNumber)
		}
	}
	if len(*progress) != 5 {
		t.Errorf("progress callback fired %d times", len(*progress))
	}

	deck := outcome.Deck
	if deck == nil {
		t.Fatal("no deck assembled")
	}
	if deck.Title != "Platform Overview" {
		t.Errorf("deck title %q", deck.Title)
	}
	if deck.Slides[0].Type != SlideTypeTitle {
		t.Errorf("first slide type %q", deck.Slides[0].Type)
	}
	if deck.Slides[len(deck.Slides)-1].Type != SlideTypeConclusion {
		t.Errorf("last slide type %q", deck.Slides[len(deck.Slides)-1].Type)
	}
	for i, slide := range deck.Slides {
		if slide.Number != i+1 {
			t.Errorf("slide numbering broken at index %d: %d", i, slide.Number)
		}
		if slide.VisualPrompt == "" {
			t.Errorf("slide %d has no visual prompt", slide.Number)
		}
		if len(slide.Bullets) > MaxBulletsPerSlide {
			t.Errorf("slide %d has %d bullets", slide.Number, len(slide.Bullets))
		}
	}
	if deck.Quality.Completeness != 1.0 {
		t.Errorf("completeness = %f", deck.Quality.Completeness)
	}
}

func TestCoordinatorRunWithoutGenerator(t *testing.T) {
	// Every generation request fails; agents must fall back to heuristics
	gen := &scriptedGenerator{err: errors.New("provider unavailable")}
	coordinator, _ := newTestCoordinator(gen)

	outcome, err := coordinator.Run(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deck := outcome.Deck
	if deck == nil {
		t.Fatal("no deck assembled")
	}
	if len(deck.Slides) < 3 {
		t.Fatalf("expected at least 3 slides, got %d", len(deck.Slides))
	}
	if deck.Slides[0].Type != SlideTypeTitle {
		t.Errorf("first slide type %q", deck.Slides[0].Type)
	}
	if deck.Slides[len(deck.Slides)-1].Type != SlideTypeConclusion {
		t.Errorf("last slide type %q", deck.Slides[len(deck.Slides)-1].Type)
	}
	if len(deck.Palette) == 0 {
		t.Error("fallback palette missing")
	}
	for _, slide := range deck.Slides {
		if slide.Type == SlideTypeContent && len(slide.Bullets) == 0 {
			t.Errorf("content slide %d has no bullets", slide.Number)
		}
	}
}

func TestCoordinatorAbortsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{}
	coordinator, _ := newTestCoordinator(gen)

	outcome, err := coordinator.Run(ctx, testDocument())
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if outcome.Status != StatusFailed {
		t.Errorf("status = %s", outcome.Status)
	}
	if outcome.Deck != nil {
		t.Error("failed run should not produce a deck")
	}
	// Cancellation aborts the first LLM-calling stage instead of
	// cascading through heuristic fallbacks
	if len(outcome.Steps) != 1 {
		t.Fatalf("got %d step results, want 1", len(outcome.Steps))
	}
	if outcome.Steps[0].StepNumber != 1 || outcome.Steps[0].Status != StatusFailed {
		t.Errorf("step result = %+v", outcome.Steps[0])
	}
}

func TestRunStep(t *testing.T) {
	gen := &scriptedGenerator{}
	coordinator, _ := newTestCoordinator(gen)
	state := &State{Document: testDocument()}

	result, err := coordinator.RunStep(context.Background(), 1, state)
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if result.StepNumber != 1 || result.Status != StatusCompleted {
		t.Errorf("result = %+v", result)
	}
	if state.Analysis == nil {
		t.Fatal("analysis stage did not populate state")
	}

	if _, err := coordinator.RunStep(context.Background(), 9, state); err == nil {
		t.Error("expected error for unknown step number")
	}
}

func TestNormalizePlan(t *testing.T) {
	analysis := &Analysis{Title: "Doc", Themes: []string{"Technology"}}

	t.Run("adds missing title and conclusion", func(t *testing.T) {
		slides := normalizePlan([]SlidePlan{
			{Type: SlideTypeContent, Title: "Only content", Layout: LayoutBullets},
		}, analysis, 3)

		if len(slides) != 3 {
			t.Fatalf("expected 3 slides, got %d", len(slides))
		}
		if slides[0].Type != SlideTypeTitle || slides[2].Type != SlideTypeConclusion {
			t.Errorf("deck shape broken: %s .. %s", slides[0].Type, slides[2].Type)
		}
	})

	t.Run("caps content slides", func(t *testing.T) {
		var plan []SlidePlan
		plan = append(plan, SlidePlan{Type: SlideTypeTitle, Title: "T"})
		for i := 0; i < 6; i++ {
			plan = append(plan, SlidePlan{Type: SlideTypeContent, Title: "C"})
		}
		plan = append(plan, SlidePlan{Type: SlideTypeConclusion, Title: "End"})

		slides := normalizePlan(plan, analysis, 3)
		if len(slides) != 5 {
			t.Errorf("expected 5 slides, got %d", len(slides))
		}
	})

	t.Run("renumbers contiguously", func(t *testing.T) {
		slides := normalizePlan([]SlidePlan{
			{Number: 7, Type: SlideTypeTitle, Title: "T"},
			{Number: 9, Type: SlideTypeContent, Title: "C"},
			{Number: 3, Type: SlideTypeConclusion, Title: "End"},
		}, analysis, 3)

		for i, slide := range slides {
			if slide.Number != i+1 {
				t.Errorf("slide %d numbered %d", i, slide.Number)
			}
		}
	})

	t.Run("unknown types become content", func(t *testing.T) {
		slides := normalizePlan([]SlidePlan{
			{Type: "section-divider", Title: "Odd"},
		}, analysis, 3)

		if slides[1].Type != SlideTypeContent || slides[1].Layout != LayoutBullets {
			t.Errorf("got %s/%s", slides[1].Type, slides[1].Layout)
		}
	})
}

func TestClampSlides(t *testing.T) {
	tests := []struct {
		total, maxContent, want int
	}{
		{0, 3, 3},
		{2, 3, 3},
		{4, 3, 4},
		{9, 3, 5},
		{5, 1, 3},
	}
	for _, tt := range tests {
		if got := clampSlides(tt.total, tt.maxContent); got != tt.want {
			t.Errorf("clampSlides(%d, %d) = %d, want %d", tt.total, tt.maxContent, got, tt.want)
		}
	}
}

func TestDetectThemes(t *testing.T) {
	themes := detectThemes("Our revenue growth depends on data analytics and automation technology.")
	want := map[string]bool{"Business Strategy": true, "Technology": true, "Data & Analytics": true, "Finance": true}
	for _, theme := range themes {
		if !want[theme] {
			t.Errorf("unexpected theme %q", theme)
		}
	}
	if len(themes) == 0 {
		t.Error("no themes detected")
	}

	if got := detectThemes("nothing relevant here"); len(got) != 1 || got[0] != "General Topics" {
		t.Errorf("fallback theme = %v", got)
	}
}

func TestContentSlideBulletMinimum(t *testing.T) {
	agent := NewContentAgent(nil, nopLogger{})

	slide := SlideContent{Number: 2, Type: SlideTypeContent, Layout: LayoutBullets}
	thin := `{"title": "Detail", "bullets": ["Only point"], "key_message": "m"}`
	if agent.applyResponse(&slide, thin) {
		t.Error("single-bullet content response should take the fallback path")
	}

	slide = SlideContent{Number: 2, Type: SlideTypeContent, Layout: LayoutBullets}
	full := `{"title": "Detail", "bullets": ["First point", "Second point"]}`
	if !agent.applyResponse(&slide, full) {
		t.Fatal("two-bullet content response should be accepted")
	}
	if len(slide.Bullets) != 2 {
		t.Errorf("bullets = %d, want 2", len(slide.Bullets))
	}

	// Fallback from a one-point plan still meets the minimum
	state := &State{Document: testDocument(), Analysis: &Analysis{}}
	planned := SlidePlan{Number: 9, Type: SlideTypeContent, Points: []string{"Lone planned point"}}
	slide = SlideContent{Number: planned.Number, Type: planned.Type}
	agent.fillFallback(&slide, planned, state)
	if len(slide.Bullets) < MinBulletsPerSlide {
		t.Errorf("fallback bullets = %d, want at least %d", len(slide.Bullets), MinBulletsPerSlide)
	}
}

func TestExtractBullets(t *testing.T) {
	t.Run("caps at four", func(t *testing.T) {
		text := "First important point here. Second important point here. Third important point here. Fourth important point here. Fifth important point here."
		bullets := extractBullets(text)
		if len(bullets) != MaxBulletsPerSlide {
			t.Errorf("got %d bullets", len(bullets))
		}
	})

	t.Run("placeholder for thin content", func(t *testing.T) {
		bullets := extractBullets("Short.")
		if len(bullets) != 3 {
			t.Errorf("expected placeholder bullets, got %v", bullets)
		}
	})
}
