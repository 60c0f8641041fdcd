// Package exporter renders assembled decks into downloadable formats.
package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/temirbekuulu/deckgen/internal/service/workflow"
)

// ErrEmptyDeck is returned when a deck has no slides to export
var ErrEmptyDeck = errors.New("deck has no slides")

// JSON writes the deck as indented JSON
func JSON(w io.Writer, deck *workflow.Deck) error {
	if deck == nil || len(deck.Slides) == 0 {
		return ErrEmptyDeck
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(deck)
}

// PDF renders the deck one landscape page per slide. The output is a plain
// handout rendering, not a styled presentation.
func PDF(w io.Writer, deck *workflow.Deck) error {
	if deck == nil || len(deck.Slides) == 0 {
		return ErrEmptyDeck
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(deck.Title, true)
	pdf.SetAutoPageBreak(true, 15)

	for _, slide := range deck.Slides {
		pdf.AddPage()
		writeSlide(pdf, deck, slide)
	}

	return pdf.Output(w)
}

func writeSlide(pdf *gofpdf.Fpdf, deck *workflow.Deck, slide workflow.SlideContent) {
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 30

	switch slide.Type {
	case workflow.SlideTypeTitle:
		pdf.SetY(70)
		pdf.SetFont("Helvetica", "B", 32)
		pdf.MultiCell(usable, 14, slide.Title, "", "C", false)
		if slide.Subtitle != "" {
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "", 18)
			pdf.MultiCell(usable, 9, slide.Subtitle, "", "C", false)
		}
		if len(deck.Themes) > 0 {
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "I", 12)
			pdf.MultiCell(usable, 6, strings.Join(deck.Themes, " · "), "", "C", false)
		}

	default:
		pdf.SetFont("Helvetica", "B", 24)
		pdf.MultiCell(usable, 11, slide.Title, "", "L", false)
		if slide.Subtitle != "" {
			pdf.SetFont("Helvetica", "I", 14)
			pdf.MultiCell(usable, 7, slide.Subtitle, "", "L", false)
		}
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "", 16)
		for _, bullet := range slide.Bullets {
			pdf.MultiCell(usable, 9, "• "+bullet, "", "L", false)
			pdf.Ln(1)
		}

		if slide.KeyMessage != "" {
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(usable, 7, slide.KeyMessage, "", "L", false)
		}
	}

	if slide.SpeakerNotes != "" {
		pdf.SetY(-30)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.MultiCell(usable, 4.5, "Notes: "+slide.SpeakerNotes, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetY(-12)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(usable, 5, fmt.Sprintf("%d / %d", slide.Number, len(deck.Slides)), "", 0, "R", false, 0, "")
}
