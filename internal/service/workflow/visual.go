package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/llm/prompts"
)

// themeDescriptors adds visual vocabulary to image prompts per theme
var themeDescriptors = map[string]string{
	"Business Strategy":   "corporate boardroom, strategic planning elements",
	"Technology":          "modern tech interface, digital innovation elements",
	"Data & Analytics":    "data visualization, dashboard style elements",
	"Customer Experience": "customer journey, service excellence visuals",
	"Finance":             "financial charts, professional business graphics",
	"Operations":          "workflow diagrams, process optimization visuals",
	"Leadership":          "team collaboration, leadership development visuals",
}

var defaultFonts = Fonts{Heading: "Helvetica", Body: "Arial"}

// VisualAgent produces image generation prompts, a color palette and
// design guidelines for the planned slides. Image prompts are persisted
// with the deck; rendering them is left to the caller.
type VisualAgent struct {
	gen     TextGenerator
	prompts *prompts.Generator
	logger  llm.Logger
}

func NewVisualAgent(gen TextGenerator, logger llm.Logger) *VisualAgent {
	return &VisualAgent{
		gen:     gen,
		prompts: prompts.NewGenerator(),
		logger:  logger,
	}
}

func (a *VisualAgent) Name() string { return "Visual Specification" }
func (a *VisualAgent) Step() int    { return 3 }

type visualResponse struct {
	Palette []string `json:"palette"`
	Fonts   struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
	} `json:"fonts"`
	Guidelines string `json:"guidelines"`
	Specs      []struct {
		SlideNumber int    `json:"slide_number"`
		Prompt      string `json:"prompt"`
		StyleNotes  string `json:"style_notes"`
	} `json:"specs"`
}

func (a *VisualAgent) Run(ctx context.Context, state *State) error {
	analysis := state.Analysis
	plan := state.Structure.Slides

	inputs := make([]prompts.VisualInput, 0, len(plan))
	for _, slide := range plan {
		inputs = append(inputs, prompts.VisualInput{
			Number: slide.Number,
			Type:   slide.Type,
			Title:  slide.Title,
			Points: slide.Points,
			Themes: analysis.Themes,
		})
	}

	visual := &Visual{}

	raw, err := a.gen.Generate(ctx, a.prompts.VisualPrompt(inputs, analysis.Themes), llm.Options{
		Temperature: 0.8,
		MaxTokens:   2048,
	})
	if err == nil {
		a.applyResponse(visual, raw)
	} else {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Info("Visual generation unavailable, using theme defaults", "error", err)
	}

	if len(visual.Palette) == 0 {
		visual.Palette = suggestPalette(analysis.Themes)
	}
	if visual.Fonts.Heading == "" {
		visual.Fonts = defaultFonts
	}
	if visual.Guidelines == "" {
		visual.Guidelines = "Modern, professional, clean; sans-serif typography with clear hierarchy; generous white space"
	}

	// Guarantee one spec per planned slide
	specByNumber := make(map[int]VisualSpec, len(visual.Specs))
	for _, spec := range visual.Specs {
		specByNumber[spec.SlideNumber] = spec
	}
	visual.Specs = visual.Specs[:0]
	for _, slide := range plan {
		spec, ok := specByNumber[slide.Number]
		if !ok || spec.Prompt == "" {
			spec = VisualSpec{
				SlideNumber: slide.Number,
				Prompt:      fallbackImagePrompt(slide, analysis.Themes),
				StyleNotes:  styleNotes(analysis.Themes),
			}
		}
		spec.SlideTitle = slide.Title
		spec.Layout = slide.Layout
		visual.Specs = append(visual.Specs, spec)
	}

	state.Visual = visual
	return nil
}

func (a *VisualAgent) applyResponse(visual *Visual, raw string) {
	jsonText, err := llm.ExtractJSON(raw)
	if err != nil {
		a.logger.Info("Visual response is not JSON, using theme defaults", "error", err)
		return
	}

	var resp visualResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		a.logger.Info("Failed to decode visual response", "error", err)
		return
	}

	visual.Palette = resp.Palette
	visual.Fonts = Fonts{Heading: resp.Fonts.Heading, Body: resp.Fonts.Body}
	visual.Guidelines = strings.TrimSpace(resp.Guidelines)
	for _, spec := range resp.Specs {
		visual.Specs = append(visual.Specs, VisualSpec{
			SlideNumber: spec.SlideNumber,
			Prompt:      strings.TrimSpace(spec.Prompt),
			StyleNotes:  strings.TrimSpace(spec.StyleNotes),
		})
	}
}

func fallbackImagePrompt(slide SlidePlan, themes []string) string {
	descriptors := describeThemes(themes)
	switch slide.Type {
	case SlideTypeTitle:
		return fmt.Sprintf("Professional title slide background for '%s', %s, modern corporate design, clean layout, 16:9 aspect ratio", slide.Title, descriptors)
	case SlideTypeConclusion:
		return fmt.Sprintf("Professional conclusion slide background, %s, summary and takeaways design, 16:9 aspect ratio", descriptors)
	default:
		return fmt.Sprintf("Professional slide background for '%s', %s, space for text content, 16:9 aspect ratio, minimal and elegant", slide.Title, descriptors)
	}
}

func describeThemes(themes []string) string {
	var parts []string
	for _, theme := range themes {
		if desc, ok := themeDescriptors[theme]; ok {
			parts = append(parts, desc)
		}
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return "professional business environment"
	}
	return strings.Join(parts, ", ")
}

func suggestPalette(themes []string) []string {
	for _, theme := range themes {
		switch theme {
		case "Technology":
			return []string{"#1E3A8A", "#3B82F6", "#E5E7EB", "#FFFFFF"}
		case "Finance":
			return []string{"#065F46", "#10B981", "#F3F4F6", "#FFFFFF"}
		}
	}
	return []string{"#1F2937", "#4B5563", "#E5E7EB", "#FFFFFF"}
}

func styleNotes(themes []string) string {
	for _, theme := range themes {
		switch theme {
		case "Technology":
			return "Modern, tech-forward, clean lines"
		case "Business Strategy":
			return "Corporate, professional, authoritative"
		}
	}
	return "Clean, professional, approachable"
}
