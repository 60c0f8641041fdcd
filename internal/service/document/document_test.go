package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `Quarterly Business Review

EXECUTIVE SUMMARY
Revenue grew 12 percent over the quarter. The key driver was the new
subscription tier, which is critical to our retention strategy.

MARKET EXPANSION
We entered two new regions. Early signals are important for planning
next year's investment.

OPERATIONS
Fulfillment times dropped below two days. This is a major milestone
for the logistics team.`

func TestFromText(t *testing.T) {
	t.Run("builds sections and metadata", func(t *testing.T) {
		content, err := FromText("", sampleText, SourceText)
		require.NoError(t, err)

		assert.Equal(t, "Quarterly Business Review", content.Title)
		assert.Equal(t, SourceText, content.Source)
		assert.NotEmpty(t, content.Sections)
		assert.LessOrEqual(t, len(content.Sections), 3)
		assert.Greater(t, content.Meta.WordCount, 0)
		assert.Contains(t, content.Meta.ReadingTime, "minute")
	})

	t.Run("keeps explicit title", func(t *testing.T) {
		content, err := FromText("My Deck", sampleText, SourceText)
		require.NoError(t, err)
		assert.Equal(t, "My Deck", content.Title)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := FromText("", "   \n  ", SourceText)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestSectionize(t *testing.T) {
	t.Run("splits on uppercase headings", func(t *testing.T) {
		sections := Sectionize(sampleText)
		require.NotEmpty(t, sections)

		titles := make([]string, 0, len(sections))
		for _, s := range sections {
			titles = append(titles, s.Title)
			assert.NotEmpty(t, s.Text)
			assert.Greater(t, s.WordCount, 0)
			assert.GreaterOrEqual(t, s.Importance, 1)
		}
		assert.Contains(t, titles, "EXECUTIVE SUMMARY")
	})

	t.Run("splits on markdown headings", func(t *testing.T) {
		text := "# Intro\nSome opening text here.\n# Details\nMore detail follows here."
		sections := Sectionize(text)
		require.Len(t, sections, 2)
		assert.Equal(t, "Intro", sections[0].Title)
		assert.Equal(t, "Details", sections[1].Title)
	})

	t.Run("unstructured text becomes one section", func(t *testing.T) {
		text := "This is just one long paragraph about nothing in particular. " +
			"It keeps going without any headings at all and should stay together."
		sections := Sectionize(text)
		require.Len(t, sections, 1)
		assert.Equal(t, len(strings.Fields(text)), sections[0].WordCount)
	})

	t.Run("caps section count", func(t *testing.T) {
		var sb strings.Builder
		for _, name := range []string{"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO"} {
			sb.WriteString(name + "\n")
			sb.WriteString("Body text for the " + name + " part of the document follows here.\n")
		}
		sections := Sectionize(sb.String())
		assert.LessOrEqual(t, len(sections), maxSections)
	})
}

func TestCalcMetadata(t *testing.T) {
	meta := CalcMetadata("one two three four five")
	assert.Equal(t, 5, meta.WordCount)
	assert.Equal(t, "1 minutes", meta.ReadingTime)
	assert.Equal(t, 1, meta.Complexity)

	long := strings.Repeat("word ", 800)
	meta = CalcMetadata(long)
	assert.Equal(t, 800, meta.WordCount)
	assert.Equal(t, "4 minutes", meta.ReadingTime)
	assert.Equal(t, 5, meta.Complexity)
}

func TestFromHTML(t *testing.T) {
	t.Run("extracts title and headings", func(t *testing.T) {
		html := `<html><head><title>Launch Plan</title></head><body>
			<nav>skip me</nav>
			<h1>Overview</h1>
			<p>The launch targets the second quarter.</p>
			<h2>Risks</h2>
			<ul><li>Supply constraints</li><li>Pricing pressure</li></ul>
			<script>var x = 1;</script>
		</body></html>`

		content, err := FromHTML(html)
		require.NoError(t, err)

		assert.Equal(t, "Launch Plan", content.Title)
		assert.Contains(t, content.Text, "Overview")
		assert.Contains(t, content.Text, "Supply constraints")
		assert.NotContains(t, content.Text, "skip me")
		assert.NotContains(t, content.Text, "var x")
	})

	t.Run("falls back to body text", func(t *testing.T) {
		content, err := FromHTML("<html><body>Plain body words only</body></html>")
		require.NoError(t, err)
		assert.Contains(t, content.Text, "Plain body words")
	})

	t.Run("rejects empty pages", func(t *testing.T) {
		_, err := FromHTML("<html><body></body></html>")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestFirstShortLine(t *testing.T) {
	assert.Equal(t, "A Heading", firstShortLine("# A Heading\nbody"))
	assert.Equal(t, "Untitled Document", firstShortLine(strings.Repeat("x", 200)))
}
