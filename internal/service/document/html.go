package document

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromHTML extracts readable text from an HTML document. Headings are
// kept on their own lines so Sectionize can recover the structure.
func FromHTML(html string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, nav, footer, noscript").Remove()

	var sb strings.Builder
	doc.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			sb.WriteString("\n# " + text + "\n")
		case "li":
			sb.WriteString("• " + text + "\n")
		default:
			sb.WriteString(text + "\n")
		}
	})

	text := strings.TrimSpace(sb.String())
	if text == "" {
		// no structural elements, fall back to the whole body text
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}

	content, err := FromText(title, text, SourceHTML)
	if err != nil {
		return nil, err
	}
	return content, nil
}
