// Package document ingests raw source material (plain text, PDF, HTML,
// remote URLs) and normalizes it into sectioned content ready for the
// generation workflow.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrEmptyDocument = errors.New("document contains no extractable text")
	ErrTooLarge      = errors.New("document exceeds the size limit")
)

// SourceType identifies where a document came from
type SourceType string

const (
	SourceText SourceType = "text"
	SourcePDF  SourceType = "pdf"
	SourceHTML SourceType = "html"
	SourceURL  SourceType = "url"
)

// Content is a normalized document ready for analysis
type Content struct {
	Title    string     `json:"title"`
	Source   SourceType `json:"source"`
	Text     string     `json:"text"`
	Sections []Section  `json:"sections"`
	Meta     Metadata   `json:"metadata"`
}

// Section is one logical part of a document
type Section struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
	Importance int    `json:"importance"`
}

// Metadata carries document-level statistics
type Metadata struct {
	WordCount   int    `json:"word_count"`
	CharCount   int    `json:"character_count"`
	ReadingTime string `json:"estimated_reading_time"`
	Complexity  int    `json:"complexity_score"` // 1..5
}

// FromText builds normalized content from raw text
func FromText(title, text string, source SourceType) (*Content, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	if title == "" {
		title = firstShortLine(text)
	}

	return &Content{
		Title:    title,
		Source:   source,
		Text:     text,
		Sections: Sectionize(text),
		Meta:     CalcMetadata(text),
	}, nil
}

// CalcMetadata computes word/character statistics for a document
func CalcMetadata(text string) Metadata {
	words := len(strings.Fields(text))

	readingMin := words / 200 // ~200 wpm
	if readingMin < 1 {
		readingMin = 1
	}

	complexity := words / 100
	if complexity < 1 {
		complexity = 1
	} else if complexity > 5 {
		complexity = 5
	}

	return Metadata{
		WordCount:   words,
		CharCount:   len(text),
		ReadingTime: fmt.Sprintf("%d minutes", readingMin),
		Complexity:  complexity,
	}
}

// firstShortLine returns the first plausible title line of a document
func firstShortLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "•") {
			continue
		}
		if len(line) < 100 {
			return strings.TrimLeft(line, "# ")
		}
		break
	}
	return "Untitled Document"
}
