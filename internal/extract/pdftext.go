// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RowExtractor extracts the embedded text layer of a PDF, walking each
// page's content in drawing order and grouping show-text segments into
// lines by their vertical position. Scanned (image-only) pages have no
// text layer and yield nothing; OCR is out of scope.
type RowExtractor struct{}

// lineTolerance is the vertical drift, in points, still considered part
// of the same text line.
const lineTolerance = 1.0

// Lines returns all non-empty, whitespace-trimmed text lines of the PDF
// at pdfPath, in page order. A page that cannot be extracted produces a
// warning on warn and is skipped; later pages are still processed. A
// document with no extractable text returns an empty slice and no error.
func (RowExtractor) Lines(pdfPath string, warn io.Writer) ([]string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		pageLines, err := extractPage(r.Page(i))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not extract text from page %d: %v\n", i, err)
			continue
		}
		lines = append(lines, pageLines...)
	}
	return lines, nil
}

// extractPage pulls the trimmed non-empty lines from one page, in the
// order the text is drawn. Positioned text (Tm, Td, TD, T*) starts a
// new line whenever its vertical coordinate moves. The parser panics on
// malformed content streams, so recover translates that into an
// ordinary error for the caller to skip.
func extractPage(p pdf.Page) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	if p.V.IsNull() {
		return nil, nil
	}

	var (
		b     strings.Builder
		lastY float64
	)
	flush := func() {
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
		b.Reset()
	}

	for i, t := range p.Content().Text {
		// Explicit newline characters in the text stream break lines too.
		if t.S == "\n" {
			flush()
			continue
		}
		if i > 0 && math.Abs(t.Y-lastY) > lineTolerance {
			flush()
		}
		b.WriteString(t.S)
		lastY = t.Y
	}
	flush()

	return lines, nil
}

// FirstLines returns at most n lines, preserving order. n <= 0 yields nil.
func FirstLines(lines []string, n int) []string {
	if n <= 0 || len(lines) == 0 {
		return nil
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
