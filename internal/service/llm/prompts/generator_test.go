package prompts

import (
	"strings"
	"testing"
)

func TestAnalysisPrompt(t *testing.T) {
	g := NewGenerator()

	prompt := g.AnalysisPrompt(AnalysisInput{
		Title:     "Quarterly Report",
		Text:      "Revenue grew by 12% driven by the new product line.",
		WordCount: 9,
		Sections: []SectionSummary{
			{Title: "Revenue", WordCount: 5},
			{Title: "Outlook", WordCount: 4},
		},
	})

	for _, want := range []string{"Quarterly Report", "9 words", "- Revenue (5 words)", "recommended_slides", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
}

func TestAnalysisPromptTruncatesLongText(t *testing.T) {
	g := NewGenerator()

	prompt := g.AnalysisPrompt(AnalysisInput{
		Title: "Big",
		Text:  strings.Repeat("word ", 10000),
	})

	if len(prompt) > maxTextChars+2000 {
		t.Errorf("prompt not truncated, length %d", len(prompt))
	}
	if !strings.Contains(prompt, "...") {
		t.Error("truncated text should end with ellipsis")
	}
}

func TestStructurePrompt(t *testing.T) {
	g := NewGenerator()

	prompt := g.StructurePrompt(StructureInput{
		Title:            "Quarterly Report",
		Themes:           []string{"growth", "strategy"},
		Summary:          "Revenue is up.",
		MaxContentSlides: 3,
		Sections: []SectionSummary{
			{Title: "Revenue", Text: "Revenue grew by 12%."},
		},
	})

	for _, want := range []string{"growth, strategy", "at most 3 content slides", "title slide", "conclusion slide", "'estimated_time'"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("structure prompt missing %q", want)
		}
	}
}

func TestVisualPrompt(t *testing.T) {
	g := NewGenerator()

	prompt := g.VisualPrompt([]VisualInput{
		{Number: 2, Type: "content", Title: "Revenue Growth", Points: []string{"12% up"}},
	}, []string{"growth"})

	for _, want := range []string{"Slide 2 (content): Revenue Growth", "12% up", "'palette'", "'style_notes'"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("visual prompt missing %q", want)
		}
	}
}

func TestSlideContentPromptVariants(t *testing.T) {
	g := NewGenerator()

	t.Run("title slide", func(t *testing.T) {
		prompt := g.SlideContentPrompt(SlideInput{Type: "title", DeckTitle: "Q3 Results", Themes: []string{"growth"}})
		if !strings.Contains(prompt, "opening slide") || !strings.Contains(prompt, "Q3 Results") {
			t.Errorf("unexpected title prompt: %s", prompt)
		}
	})

	t.Run("content slide honors bullet cap", func(t *testing.T) {
		prompt := g.SlideContentPrompt(SlideInput{
			Type:       "content",
			Number:     2,
			Title:      "Revenue",
			DeckTitle:  "Q3 Results",
			Points:     []string{"12% growth"},
			MaxBullets: 3,
		})
		if !strings.Contains(prompt, "at most 3 short strings") {
			t.Errorf("bullet cap not applied: %s", prompt)
		}
		if !strings.Contains(prompt, "- 12% growth") {
			t.Error("planned points missing")
		}
	})

	t.Run("content slide default bullet cap", func(t *testing.T) {
		prompt := g.SlideContentPrompt(SlideInput{Type: "content", Title: "Revenue", DeckTitle: "Q3"})
		if !strings.Contains(prompt, "at most 4 short strings") {
			t.Errorf("default bullet cap missing: %s", prompt)
		}
	})

	t.Run("conclusion slide", func(t *testing.T) {
		prompt := g.SlideContentPrompt(SlideInput{Type: "conclusion", DeckTitle: "Q3 Results"})
		if !strings.Contains(prompt, "closing slide") || !strings.Contains(prompt, "call to action") {
			t.Errorf("unexpected conclusion prompt: %s", prompt)
		}
	})
}
