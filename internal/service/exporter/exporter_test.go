package exporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/temirbekuulu/deckgen/internal/service/workflow"
)

func sampleDeck() *workflow.Deck {
	return &workflow.Deck{
		Title:     "Platform Overview",
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Themes:    []string{"Technology"},
		Palette:   []string{"#1E3A8A"},
		Fonts:     workflow.Fonts{Heading: "Helvetica", Body: "Arial"},
		Slides: []workflow.SlideContent{
			{Number: 1, Type: workflow.SlideTypeTitle, Title: "Platform Overview", Subtitle: "From ingest to insight", SpeakerNotes: "Welcome."},
			{Number: 2, Type: workflow.SlideTypeContent, Title: "Architecture", Bullets: []string{"Service mesh", "Event bus"}, KeyMessage: "It scales."},
			{Number: 3, Type: workflow.SlideTypeConclusion, Title: "Takeaways", Bullets: []string{"Adopt incrementally"}},
		},
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleDeck()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded workflow.Deck
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Title != "Platform Overview" || len(decoded.Slides) != 3 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sampleDeck()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Error("output does not start with PDF header")
	}
	if buf.Len() < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestExportEmptyDeck(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, &workflow.Deck{}); err != ErrEmptyDeck {
		t.Errorf("JSON: expected ErrEmptyDeck, got %v", err)
	}
	if err := PDF(&buf, nil); err != ErrEmptyDeck {
		t.Errorf("PDF: expected ErrEmptyDeck, got %v", err)
	}
}
