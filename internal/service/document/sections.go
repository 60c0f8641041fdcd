package document

import (
	"sort"
	"strings"
)

// maxSections caps how many sections are kept for slide planning. The
// workflow budgets one content slide per section, so the cap tracks the
// five-slide deck format (title + content + conclusion).
const maxSections = 3

var importanceKeywords = []string{
	"important", "key", "critical", "essential", "main", "primary",
	"significant", "major", "crucial", "fundamental", "core",
}

// Sectionize splits document text into logical sections using heading
// heuristics. A line starts a new section when it is all-caps, numbered
// ("1.", "2." ...), a markdown heading, or a short line that does not
// read like a sentence. Text before any heading, or text with no
// headings at all, becomes a single section.
func Sectionize(text string) []Section {
	var sections []Section
	var currentTitle string
	var currentBody []string

	flush := func() {
		if currentTitle == "" || len(currentBody) == 0 {
			return
		}
		body := strings.Join(currentBody, " ")
		sections = append(sections, Section{
			Title:      currentTitle,
			Text:       body,
			WordCount:  len(strings.Fields(body)),
			Importance: sectionImportance(body),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isHeading(line) {
			flush()
			currentTitle = strings.TrimLeft(line, "# ")
			currentBody = nil
			continue
		}

		if currentTitle != "" {
			currentBody = append(currentBody, line)
		} else {
			// body text before any heading
			currentTitle = firstShortLine(text)
			currentBody = append(currentBody, line)
		}
	}
	flush()

	if len(sections) == 0 {
		sections = append(sections, Section{
			Title:      firstShortLine(text),
			Text:       text,
			WordCount:  len(strings.Fields(text)),
			Importance: sectionImportance(text),
		})
	}

	if len(sections) > maxSections {
		sort.SliceStable(sections, func(i, j int) bool {
			return sections[i].Importance*sections[i].WordCount >
				sections[j].Importance*sections[j].WordCount
		})
		sections = sections[:maxSections]
	}

	return sections
}

// isHeading reports whether a line looks like a section heading
func isHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	for _, p := range []string{"1.", "2.", "3.", "4.", "5.", "6.", "7.", "8.", "9."} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	if line == strings.ToUpper(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return true
	}
	// short line that does not end like a sentence or a bullet
	if len(line) < 100 && !strings.HasSuffix(line, ".") && !strings.HasPrefix(line, "•") &&
		!strings.HasPrefix(line, "-") && len(strings.Fields(line)) <= 8 {
		return true
	}
	return false
}

// sectionImportance scores a section by counting emphasis keywords
func sectionImportance(body string) int {
	lower := strings.ToLower(body)
	score := 0
	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	if score < 1 {
		score = 1
	}
	return score
}
