package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/llm/prompts"
)

const secondsPerSlide = 120

// StructureAgent plans the slide sequence: a title slide, content slides
// for the most important sections, and a conclusion slide
type StructureAgent struct {
	gen              TextGenerator
	prompts          *prompts.Generator
	maxContentSlides int
	logger           llm.Logger
}

func NewStructureAgent(gen TextGenerator, maxContentSlides int, logger llm.Logger) *StructureAgent {
	return &StructureAgent{
		gen:              gen,
		prompts:          prompts.NewGenerator(),
		maxContentSlides: maxContentSlides,
		logger:           logger,
	}
}

func (a *StructureAgent) Name() string { return "Structure Planning" }
func (a *StructureAgent) Step() int    { return 2 }

type structureResponse struct {
	Approach string `json:"approach"`
	Slides   []struct {
		Number        int      `json:"number"`
		Type          string   `json:"type"`
		Title         string   `json:"title"`
		Subtitle      string   `json:"subtitle"`
		Layout        string   `json:"layout"`
		Points        []string `json:"points"`
		EstimatedTime int      `json:"estimated_time"`
	} `json:"slides"`
}

func (a *StructureAgent) Run(ctx context.Context, state *State) error {
	analysis := state.Analysis

	input := prompts.StructureInput{
		Title:             analysis.Title,
		Themes:            analysis.Themes,
		Summary:           analysis.Summary,
		RecommendedSlides: analysis.RecommendedSlides,
		MaxContentSlides:  a.maxContentSlides,
	}
	for _, section := range analysis.Sections {
		input.Sections = append(input.Sections, prompts.SectionSummary{
			Title:     section.Title,
			Text:      section.Text,
			WordCount: section.WordCount,
		})
	}

	structure := &Structure{}

	raw, err := a.gen.Generate(ctx, a.prompts.StructurePrompt(input), llm.Options{
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err == nil {
		structure.RawPlan = raw
		a.applyResponse(structure, raw)
	} else {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Info("Structure generation unavailable, building plan from sections", "error", err)
	}

	if len(structure.Slides) == 0 {
		structure.Slides = a.fallbackPlan(analysis)
	}

	structure.Slides = normalizePlan(structure.Slides, analysis, a.maxContentSlides)
	structure.TotalSlides = len(structure.Slides)
	structure.EstimatedDuration = estimateDuration(structure.Slides)
	structure.LayoutDistribution = layoutDistribution(structure.Slides)

	state.Structure = structure
	return nil
}

func (a *StructureAgent) applyResponse(structure *Structure, raw string) {
	jsonText, err := llm.ExtractJSON(raw)
	if err != nil {
		a.logger.Info("Structure response is not JSON, using fallback plan", "error", err)
		return
	}

	var resp structureResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		a.logger.Info("Failed to decode structure response", "error", err)
		return
	}

	structure.Approach = strings.TrimSpace(resp.Approach)
	for _, s := range resp.Slides {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		structure.Slides = append(structure.Slides, SlidePlan{
			Number:        s.Number,
			Type:          s.Type,
			Title:         strings.TrimSpace(s.Title),
			Subtitle:      strings.TrimSpace(s.Subtitle),
			Layout:        s.Layout,
			Points:        s.Points,
			EstimatedTime: s.EstimatedTime,
		})
	}
}

// fallbackPlan builds a slide sequence directly from the analyzed sections
func (a *StructureAgent) fallbackPlan(analysis *Analysis) []SlidePlan {
	var slides []SlidePlan

	subtitle := ""
	if len(analysis.Themes) > 0 {
		limit := len(analysis.Themes)
		if limit > 2 {
			limit = 2
		}
		subtitle = "Key Insights: " + strings.Join(analysis.Themes[:limit], ", ")
	}

	slides = append(slides, SlidePlan{
		Type:     SlideTypeTitle,
		Title:    analysis.Title,
		Subtitle: subtitle,
		Layout:   LayoutTitle,
	})

	sections := analysis.Sections
	if len(sections) > a.maxContentSlides {
		sections = sections[:a.maxContentSlides]
	}
	for i, section := range sections {
		title := section.Title
		if title == "" {
			title = fmt.Sprintf("Key Point %d", i+1)
		}
		slides = append(slides, SlidePlan{
			Type:   SlideTypeContent,
			Title:  title,
			Layout: pickLayout(section),
			Points: extractKeyPoints(section.Text),
		})
	}

	slides = append(slides, SlidePlan{
		Type:   SlideTypeConclusion,
		Title:  "Key Takeaways & Next Steps",
		Layout: LayoutBullets,
		Points: conclusionPoints(analysis),
	})

	return slides
}

// normalizePlan enforces the deck shape regardless of what the model
// returned: a title slide first, a conclusion slide last, at most
// maxContent content slides in between, numbered contiguously from 1.
func normalizePlan(slides []SlidePlan, analysis *Analysis, maxContent int) []SlidePlan {
	var content []SlidePlan
	var title, conclusion *SlidePlan

	for i := range slides {
		s := slides[i]
		switch s.Type {
		case SlideTypeTitle:
			if title == nil {
				title = &s
			}
		case SlideTypeConclusion:
			conclusion = &s
		default:
			s.Type = SlideTypeContent
			if s.Layout == "" {
				s.Layout = LayoutBullets
			}
			content = append(content, s)
		}
	}

	if title == nil {
		title = &SlidePlan{Type: SlideTypeTitle, Title: analysis.Title, Layout: LayoutTitle}
	}
	if title.Layout == "" {
		title.Layout = LayoutTitle
	}
	if conclusion == nil {
		conclusion = &SlidePlan{
			Type:   SlideTypeConclusion,
			Title:  "Key Takeaways & Next Steps",
			Layout: LayoutBullets,
			Points: conclusionPoints(analysis),
		}
	}
	if conclusion.Layout == "" {
		conclusion.Layout = LayoutBullets
	}

	if len(content) > maxContent {
		content = content[:maxContent]
	}

	normalized := make([]SlidePlan, 0, len(content)+2)
	normalized = append(normalized, *title)
	normalized = append(normalized, content...)
	normalized = append(normalized, *conclusion)

	for i := range normalized {
		normalized[i].Number = i + 1
		if normalized[i].EstimatedTime <= 0 {
			normalized[i].EstimatedTime = secondsPerSlide
		}
	}

	return normalized
}

func pickLayout(section document.Section) string {
	if section.WordCount < 100 {
		return LayoutBullets
	}
	return LayoutTwoColumn
}

func conclusionPoints(analysis *Analysis) []string {
	points := []string{
		fmt.Sprintf("Key insights from %d main areas analyzed", len(analysis.Sections)),
	}
	if len(analysis.Themes) > 0 {
		limit := len(analysis.Themes)
		if limit > 2 {
			limit = 2
		}
		points = append(points, "Primary themes: "+strings.Join(analysis.Themes[:limit], ", "))
	}
	points = append(points,
		"Strategic implications and recommendations",
		"Next steps and action items")
	return points
}

func estimateDuration(slides []SlidePlan) int {
	total := 0
	for _, slide := range slides {
		total += slide.EstimatedTime
	}
	return total
}

func layoutDistribution(slides []SlidePlan) map[string]int {
	dist := make(map[string]int)
	for _, slide := range slides {
		dist[slide.Layout]++
	}
	return dist
}

// splitSentences is a rough splitter good enough for bullet extraction
func splitSentences(text string) []string {
	var sentences []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part+".")
		}
	}
	return sentences
}

// extractKeyPoints pulls short sentences out of section text for use as
// planned talking points
func extractKeyPoints(text string) []string {
	var points []string
	for _, sentence := range splitSentences(text) {
		if len(sentence) > 20 && len(sentence) < 150 {
			points = append(points, sentence)
		}
		if len(points) >= MaxBulletsPerSlide {
			break
		}
	}
	if len(points) == 0 {
		points = []string{"Key insight from the content analysis"}
	}
	return points
}

// extractKeyMessage finds the first presentable sentence in a section
func extractKeyMessage(text string) string {
	for _, sentence := range splitSentences(text) {
		if len(sentence) > 20 && len(sentence) < 150 {
			return sentence
		}
	}
	return "Key insight from this section."
}
