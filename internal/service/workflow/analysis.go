package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/llm/prompts"
)

// themeKeywords maps display themes to indicator words used when the model
// response yields no usable themes
var themeKeywords = map[string][]string{
	"Business Strategy":   {"business", "strategy", "market", "competitive", "growth"},
	"Technology":          {"technology", "ai", "automation", "digital", "innovation"},
	"Data & Analytics":    {"data", "analytics", "insights", "metrics", "analysis"},
	"Customer Experience": {"customer", "experience", "satisfaction", "service"},
	"Finance":             {"finance", "revenue", "cost", "profit", "investment"},
	"Operations":          {"operations", "process", "efficiency", "workflow"},
	"Leadership":          {"leadership", "management", "team", "culture"},
}

// AnalysisAgent extracts themes, a summary and a slide count recommendation
// from the source document
type AnalysisAgent struct {
	gen              TextGenerator
	prompts          *prompts.Generator
	maxContentSlides int
	logger           llm.Logger
}

func NewAnalysisAgent(gen TextGenerator, maxContentSlides int, logger llm.Logger) *AnalysisAgent {
	return &AnalysisAgent{
		gen:              gen,
		prompts:          prompts.NewGenerator(),
		maxContentSlides: maxContentSlides,
		logger:           logger,
	}
}

func (a *AnalysisAgent) Name() string { return "Document Analysis" }
func (a *AnalysisAgent) Step() int    { return 1 }

type analysisResponse struct {
	Themes            []string `json:"themes"`
	Summary           string   `json:"summary"`
	Audience          string   `json:"audience"`
	Tone              string   `json:"tone"`
	RecommendedSlides int      `json:"recommended_slides"`
}

func (a *AnalysisAgent) Run(ctx context.Context, state *State) error {
	doc := state.Document

	input := prompts.AnalysisInput{
		Title:     doc.Title,
		Text:      doc.Text,
		WordCount: doc.Meta.WordCount,
	}
	for _, section := range doc.Sections {
		input.Sections = append(input.Sections, prompts.SectionSummary{
			Title:     section.Title,
			Text:      section.Text,
			WordCount: section.WordCount,
		})
	}

	analysis := &Analysis{
		Title:    doc.Title,
		Sections: doc.Sections,
		Metadata: doc.Meta,
	}

	raw, err := a.gen.Generate(ctx, a.prompts.AnalysisPrompt(input), llm.Options{
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err == nil {
		analysis.RawAnalysis = raw
		a.applyResponse(analysis, raw)
	} else {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Info("Analysis generation unavailable, using heuristics", "error", err)
	}

	if len(analysis.Themes) == 0 {
		analysis.Themes = detectThemes(doc.Text)
	}
	if analysis.Summary == "" {
		analysis.Summary = firstSentences(doc.Text, 2)
	}
	if analysis.RecommendedSlides == 0 {
		analysis.RecommendedSlides = len(doc.Sections) + 2
	}
	analysis.RecommendedSlides = clampSlides(analysis.RecommendedSlides, a.maxContentSlides)

	state.Analysis = analysis
	return nil
}

func (a *AnalysisAgent) applyResponse(analysis *Analysis, raw string) {
	jsonText, err := llm.ExtractJSON(raw)
	if err != nil {
		a.logger.Info("Analysis response is not JSON, using heuristics", "error", err)
		return
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		a.logger.Info("Failed to decode analysis response", "error", err)
		return
	}

	for _, theme := range resp.Themes {
		if theme = strings.TrimSpace(theme); theme != "" {
			analysis.Themes = append(analysis.Themes, theme)
		}
	}
	if len(analysis.Themes) > 5 {
		analysis.Themes = analysis.Themes[:5]
	}
	analysis.Summary = strings.TrimSpace(resp.Summary)
	analysis.Audience = strings.TrimSpace(resp.Audience)
	analysis.Tone = strings.TrimSpace(resp.Tone)
	analysis.RecommendedSlides = resp.RecommendedSlides
}

// detectThemes scores the text against the keyword table
func detectThemes(text string) []string {
	lower := strings.ToLower(text)

	var themes []string
	for _, theme := range themeOrder {
		for _, keyword := range themeKeywords[theme] {
			if strings.Contains(lower, keyword) {
				themes = append(themes, theme)
				break
			}
		}
	}

	if len(themes) == 0 {
		return []string{"General Topics"}
	}
	if len(themes) > 5 {
		themes = themes[:5]
	}
	return themes
}

// themeOrder keeps detection deterministic; map iteration is not
var themeOrder = []string{
	"Business Strategy",
	"Technology",
	"Data & Analytics",
	"Customer Experience",
	"Finance",
	"Operations",
	"Leadership",
}

// clampSlides bounds the total slide count: always a title and a
// conclusion, between one and maxContent content slides
func clampSlides(total, maxContent int) int {
	if total < 3 {
		return 3
	}
	if total > maxContent+2 {
		return maxContent + 2
	}
	return total
}

func firstSentences(text string, n int) string {
	sentences := splitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}
