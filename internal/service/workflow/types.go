package workflow

import (
	"time"

	"github.com/temirbekuulu/deckgen/internal/service/document"
)

// Slide types
const (
	SlideTypeTitle      = "title"
	SlideTypeContent    = "content"
	SlideTypeConclusion = "conclusion"
)

// Slide layouts
const (
	LayoutTitle     = "title"
	LayoutBullets   = "bullets"
	LayoutTwoColumn = "two-column"
	LayoutQuote     = "quote"
)

// Bullet bounds per content slide: enough to carry the section, few
// enough to stay readable
const (
	MinBulletsPerSlide = 2
	MaxBulletsPerSlide = 4
)

// Analysis is the output of the document analysis stage
type Analysis struct {
	Title             string             `json:"title"`
	Summary           string             `json:"summary"`
	Audience          string             `json:"audience,omitempty"`
	Tone              string             `json:"tone,omitempty"`
	Themes            []string           `json:"themes"`
	Sections          []document.Section `json:"sections"`
	Metadata          document.Metadata  `json:"metadata"`
	RecommendedSlides int                `json:"recommended_slides"`
	RawAnalysis       string             `json:"raw_analysis,omitempty"`
}

// SlidePlan describes one planned slide before content generation
type SlidePlan struct {
	Number        int      `json:"number"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Layout        string   `json:"layout"`
	Points        []string `json:"points,omitempty"`
	EstimatedTime int      `json:"estimated_time"` // seconds
}

// Structure is the output of the structure planning stage
type Structure struct {
	Slides             []SlidePlan    `json:"slides"`
	TotalSlides        int            `json:"total_slides"`
	EstimatedDuration  int            `json:"estimated_duration"` // seconds
	LayoutDistribution map[string]int `json:"layout_distribution"`
	Approach           string         `json:"approach,omitempty"`
	RawPlan            string         `json:"raw_plan,omitempty"`
}

// VisualSpec holds the image prompt and styling for one slide
type VisualSpec struct {
	SlideNumber int    `json:"slide_number"`
	SlideTitle  string `json:"slide_title"`
	Prompt      string `json:"prompt"`
	Layout      string `json:"layout"`
	StyleNotes  string `json:"style_notes,omitempty"`
}

// Fonts pairs a heading and body typeface
type Fonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Visual is the output of the visual specification stage
type Visual struct {
	Specs      []VisualSpec `json:"specs"`
	Palette    []string     `json:"palette"`
	Fonts      Fonts        `json:"fonts"`
	Guidelines string       `json:"guidelines,omitempty"`
}

// SlideContent is a fully generated slide
type SlideContent struct {
	Number       int      `json:"number"`
	Type         string   `json:"type"`
	Layout       string   `json:"layout"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	KeyMessage   string   `json:"key_message,omitempty"`
	SpeakerNotes string   `json:"speaker_notes,omitempty"`
	VisualPrompt string   `json:"visual_prompt,omitempty"`
	StyleNotes   string   `json:"style_notes,omitempty"`
}

// QualityMetrics summarizes how complete the assembled deck is
type QualityMetrics struct {
	Completeness   float64 `json:"completeness"` // 0..1 vs planned slide count
	TotalBullets   int     `json:"total_bullets"`
	AverageBullets float64 `json:"average_bullets"`
}

// Deck is the final assembled presentation
type Deck struct {
	Title             string         `json:"title"`
	CreatedAt         time.Time      `json:"created_at"`
	Themes            []string       `json:"themes"`
	EstimatedDuration int            `json:"estimated_duration"` // seconds
	Palette           []string       `json:"palette"`
	Fonts             Fonts          `json:"fonts"`
	Guidelines        string         `json:"guidelines,omitempty"`
	Slides            []SlideContent `json:"slides"`
	Quality           QualityMetrics `json:"quality"`
}
