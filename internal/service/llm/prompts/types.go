package prompts

// AnalysisInput carries the source document for the analysis prompt
type AnalysisInput struct {
	Title     string
	Text      string
	Sections  []SectionSummary
	WordCount int
}

// SectionSummary is a condensed view of a document section
type SectionSummary struct {
	Title     string
	Text      string
	WordCount int
}

// StructureInput carries analysis results for the structure-planning prompt
type StructureInput struct {
	Title             string
	Themes            []string
	Summary           string
	Sections          []SectionSummary
	RecommendedSlides int
	MaxContentSlides  int
}

// SlideInput describes one planned slide for the content prompt
type SlideInput struct {
	Number     int
	Type       string
	Title      string
	Subtitle   string
	Layout     string
	Points     []string
	DeckTitle  string
	Themes     []string
	MaxBullets int
}

// VisualInput describes a planned slide for the visual-spec prompt
type VisualInput struct {
	Number int
	Type   string
	Title  string
	Points []string
	Themes []string
}
