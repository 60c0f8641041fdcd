package document

// PDF ingestion uses the embedded text layer only; scanned (image-only)
// PDFs have nothing to extract and are rejected with ErrEmptyDocument.

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF extracts the text layer of a PDF and normalizes it
func FromPDF(title string, r io.ReaderAt, size int64) (*Content, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	var parts []string

	for i := 1; i <= numPages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}

		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			// pages with broken content streams are skipped, not fatal
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	if len(parts) == 0 {
		return nil, ErrEmptyDocument
	}

	return FromText(title, strings.Join(parts, "\n\n"), SourcePDF)
}
