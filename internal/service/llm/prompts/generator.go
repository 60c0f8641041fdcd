// Package prompts builds the prompts sent to LLM providers during deck
// generation. Each builder produces plain text instructing the model to
// answer with a strict JSON shape so downstream parsing stays uniform.
package prompts

import (
	"fmt"
	"strings"
)

const maxTextChars = 12000

// Generator creates prompts for the generation workflow
type Generator struct{}

// NewGenerator creates a new prompt generator
func NewGenerator() *Generator {
	return &Generator{}
}

// AnalysisPrompt creates a prompt for document analysis
func (g *Generator) AnalysisPrompt(input AnalysisInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert document analyst preparing material for a presentation.\n\n")
	sb.WriteString(fmt.Sprintf("Analyze the following document titled \"%s\" (%d words).\n\n", input.Title, input.WordCount))

	if len(input.Sections) > 0 {
		sb.WriteString("The document has these sections:\n")
		for _, section := range input.Sections {
			sb.WriteString(fmt.Sprintf("- %s (%d words)\n", section.Title, section.WordCount))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Document text:\n")
	sb.WriteString(truncate(input.Text, maxTextChars))
	sb.WriteString("\n\n")

	sb.WriteString("Identify the main themes, summarize the document in 2-3 sentences, ")
	sb.WriteString("and recommend how many content slides would present it well.\n\n")
	sb.WriteString("Response format: JSON with fields 'themes' (array of strings), ")
	sb.WriteString("'summary' (string), 'audience' (string), 'tone' (string), ")
	sb.WriteString("'recommended_slides' (integer).\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

// StructurePrompt creates a prompt for presentation structure planning
func (g *Generator) StructurePrompt(input StructureInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert presentation designer.\n\n")
	sb.WriteString(fmt.Sprintf("Plan the structure of a presentation for the document \"%s\".\n\n", input.Title))

	if input.Summary != "" {
		sb.WriteString(fmt.Sprintf("Document summary: %s\n\n", input.Summary))
	}

	if len(input.Themes) > 0 {
		sb.WriteString(fmt.Sprintf("Main themes: %s\n\n", strings.Join(input.Themes, ", ")))
	}

	if len(input.Sections) > 0 {
		sb.WriteString("Key sections:\n")
		for _, section := range input.Sections {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", section.Title, truncate(section.Text, 300)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("The deck must open with a title slide and close with a conclusion slide, "+
		"with at most %d content slides between them.\n\n", input.MaxContentSlides))

	sb.WriteString("Response format: JSON with fields 'approach' (string) and 'slides' (array). ")
	sb.WriteString("Each slide has 'number' (integer, starting at 1), 'type' ")
	sb.WriteString("(one of 'title', 'content', 'conclusion'), 'title' (string), ")
	sb.WriteString("'subtitle' (string), 'layout' (one of 'title', 'bullets', 'two-column', 'quote'), ")
	sb.WriteString("'points' (array of strings), 'estimated_time' (seconds, integer).\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

// VisualPrompt creates a prompt for visual specifications
func (g *Generator) VisualPrompt(inputs []VisualInput, themes []string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert in presentation visuals.\n\n")
	sb.WriteString("Propose image generation prompts and style notes for the following slides.\n\n")

	if len(themes) > 0 {
		sb.WriteString(fmt.Sprintf("Presentation themes: %s\n\n", strings.Join(themes, ", ")))
	}

	for _, input := range inputs {
		sb.WriteString(fmt.Sprintf("Slide %d (%s): %s\n", input.Number, input.Type, input.Title))
		for _, point := range input.Points {
			sb.WriteString(fmt.Sprintf("  - %s\n", point))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("Response format: JSON with fields 'palette' (array of hex color strings), ")
	sb.WriteString("'fonts' (object with 'heading' and 'body'), 'guidelines' (string), ")
	sb.WriteString("'specs' (array). Each spec has 'slide_number' (integer), ")
	sb.WriteString("'prompt' (image generation prompt, string), 'style_notes' (string).\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

// SlideContentPrompt creates a prompt for a single slide's content
func (g *Generator) SlideContentPrompt(input SlideInput) string {
	switch input.Type {
	case "title":
		return g.titleSlidePrompt(input)
	case "conclusion":
		return g.conclusionSlidePrompt(input)
	default:
		return g.contentSlidePrompt(input)
	}
}

func (g *Generator) titleSlidePrompt(input SlideInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert presentation copywriter.\n\n")
	sb.WriteString(fmt.Sprintf("Write the opening slide for a presentation titled \"%s\".\n", input.DeckTitle))
	if len(input.Themes) > 0 {
		sb.WriteString(fmt.Sprintf("The presentation covers: %s\n", strings.Join(input.Themes, ", ")))
	}
	sb.WriteString("\n")

	sb.WriteString("Response format: JSON with fields 'title' (string, punchy, under 10 words), ")
	sb.WriteString("'subtitle' (string), 'speaker_notes' (string, 2-3 sentences for the presenter).\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

func (g *Generator) contentSlidePrompt(input SlideInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert presentation copywriter.\n\n")
	sb.WriteString(fmt.Sprintf("Write slide %d of the presentation \"%s\".\n", input.Number, input.DeckTitle))
	sb.WriteString(fmt.Sprintf("Slide topic: %s\n", input.Title))
	if input.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("Angle: %s\n", input.Subtitle))
	}

	if len(input.Points) > 0 {
		sb.WriteString("Planned talking points:\n")
		for _, point := range input.Points {
			sb.WriteString(fmt.Sprintf("- %s\n", point))
		}
	}
	sb.WriteString("\n")

	maxBullets := input.MaxBullets
	if maxBullets <= 0 {
		maxBullets = 4
	}

	sb.WriteString(fmt.Sprintf("Response format: JSON with fields 'title' (string), "+
		"'bullets' (array of at most %d short strings), 'key_message' (string, one sentence), "+
		"'speaker_notes' (string).\n", maxBullets))
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

func (g *Generator) conclusionSlidePrompt(input SlideInput) string {
	var sb strings.Builder

	sb.WriteString("You are an expert presentation copywriter.\n\n")
	sb.WriteString(fmt.Sprintf("Write the closing slide for the presentation \"%s\".\n", input.DeckTitle))
	if len(input.Themes) > 0 {
		sb.WriteString(fmt.Sprintf("It covered: %s\n", strings.Join(input.Themes, ", ")))
	}
	sb.WriteString("\n")

	sb.WriteString("Summarize the key takeaways and end with a clear call to action.\n\n")
	sb.WriteString("Response format: JSON with fields 'title' (string), ")
	sb.WriteString("'bullets' (array of at most 4 takeaway strings), 'key_message' (string), ")
	sb.WriteString("'speaker_notes' (string).\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.\n")

	return sb.String()
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
