package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/llm/prompts"
)

// ContentAgent writes the actual slide copy: titles, bullets, key messages
// and speaker notes. It issues one generation request per slide; pacing
// between requests is the LLM service's concern.
type ContentAgent struct {
	gen     TextGenerator
	prompts *prompts.Generator
	logger  llm.Logger
}

func NewContentAgent(gen TextGenerator, logger llm.Logger) *ContentAgent {
	return &ContentAgent{
		gen:     gen,
		prompts: prompts.NewGenerator(),
		logger:  logger,
	}
}

func (a *ContentAgent) Name() string { return "Slide Content" }
func (a *ContentAgent) Step() int    { return 4 }

type slideResponse struct {
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Bullets      []string `json:"bullets"`
	KeyMessage   string   `json:"key_message"`
	SpeakerNotes string   `json:"speaker_notes"`
}

func (a *ContentAgent) Run(ctx context.Context, state *State) error {
	analysis := state.Analysis
	plan := state.Structure.Slides

	slides := make([]SlideContent, 0, len(plan))
	for _, planned := range plan {
		slide := SlideContent{
			Number:   planned.Number,
			Type:     planned.Type,
			Layout:   planned.Layout,
			Title:    planned.Title,
			Subtitle: planned.Subtitle,
		}

		input := prompts.SlideInput{
			Number:     planned.Number,
			Type:       planned.Type,
			Title:      planned.Title,
			Subtitle:   planned.Subtitle,
			Layout:     planned.Layout,
			Points:     planned.Points,
			DeckTitle:  analysis.Title,
			Themes:     analysis.Themes,
			MaxBullets: MaxBulletsPerSlide,
		}

		raw, err := a.gen.Generate(ctx, a.prompts.SlideContentPrompt(input), llm.Options{
			Temperature: 0.7,
			MaxTokens:   1024,
		})
		if err == nil && a.applyResponse(&slide, raw) {
			slides = append(slides, slide)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Info("Slide generation unavailable, using planned points",
				"slide", planned.Number, "error", err)
		}

		a.fillFallback(&slide, planned, state)
		slides = append(slides, slide)
	}

	state.Slides = slides
	return nil
}

func (a *ContentAgent) applyResponse(slide *SlideContent, raw string) bool {
	jsonText, err := llm.ExtractJSON(raw)
	if err != nil {
		a.logger.Info("Slide response is not JSON", "slide", slide.Number, "error", err)
		return false
	}

	var resp slideResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		a.logger.Info("Failed to decode slide response", "slide", slide.Number, "error", err)
		return false
	}

	if title := strings.TrimSpace(resp.Title); title != "" {
		slide.Title = title
	}
	if subtitle := strings.TrimSpace(resp.Subtitle); subtitle != "" {
		slide.Subtitle = subtitle
	}
	slide.Bullets = trimBullets(resp.Bullets)
	slide.KeyMessage = strings.TrimSpace(resp.KeyMessage)
	slide.SpeakerNotes = strings.TrimSpace(resp.SpeakerNotes)

	// A content slide needs at least two bullets to carry its section;
	// thinner responses take the fallback path instead
	if slide.Type == SlideTypeContent && len(slide.Bullets) < MinBulletsPerSlide {
		return false
	}
	return true
}

// fillFallback populates the slide from planned points and section text
func (a *ContentAgent) fillFallback(slide *SlideContent, planned SlidePlan, state *State) {
	switch planned.Type {
	case SlideTypeTitle:
		slide.SpeakerNotes = "Welcome to the presentation. Introduce yourself and provide context for the topic."
	case SlideTypeConclusion:
		slide.Bullets = trimBullets(planned.Points)
		if len(slide.Bullets) == 0 {
			slide.Bullets = []string{
				"Key insights from today's presentation",
				"Actionable next steps",
				"Questions and discussion",
			}
		}
		slide.SpeakerNotes = "Summarize key points, provide next steps, and open for questions."
	default:
		section := matchingSection(slide.Number, state)
		if section != nil {
			slide.Bullets = extractBullets(section.Text)
			slide.KeyMessage = extractKeyMessage(section.Text)
		} else {
			slide.Bullets = trimBullets(planned.Points)
		}
		if len(slide.Bullets) < MinBulletsPerSlide {
			slide.Bullets = trimBullets(append(slide.Bullets,
				"Key insight from the content analysis",
				"Supporting detail from the source document"))
		}
		slide.SpeakerNotes = "Discuss each point in detail."
	}
}

// matchingSection maps a content slide back to its source section; slide 2
// is the first content slide, section index 0
func matchingSection(slideNumber int, state *State) *document.Section {
	idx := slideNumber - 2
	if idx < 0 || idx >= len(state.Analysis.Sections) {
		return nil
	}
	return &state.Analysis.Sections[idx]
}

// extractBullets converts section prose into at most MaxBulletsPerSlide
// short bullet points
func extractBullets(text string) []string {
	var bullets []string
	for _, sentence := range splitSentences(text) {
		if len(sentence) > 10 && len(sentence) < 100 {
			bullets = append(bullets, sentence)
		}
		if len(bullets) >= MaxBulletsPerSlide {
			break
		}
	}

	if len(bullets) < 2 {
		bullets = []string{
			"Key insight from this section",
			"Important consideration",
			"Actionable takeaway",
		}
	}
	return bullets
}

func trimBullets(bullets []string) []string {
	var out []string
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
		if len(out) >= MaxBulletsPerSlide {
			break
		}
	}
	return out
}
