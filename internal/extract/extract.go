// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts fetched PDFs into plain text files.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/drive-text/pkg/types"
)

const (
	// textDir is the subdirectory under the files base for extracted text.
	textDir = "text"
	// rawDir is the subdirectory under the files base for raw PDFs.
	rawDir = "raw"
)

// Extractor turns a PDF file into text lines. warn receives per-page
// warnings for pages that could not be extracted.
type Extractor interface {
	Lines(pdfPath string, warn io.Writer) ([]string, error)
}

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractFile extracts text from a single PDF, writing the result to the
// text output directory. If the text output already exists, it leaves
// the file untouched and returns types.ExtractionNone to mean no
// extraction ran. A PDF with no extractable text at all is reported as
// failed rather than producing an empty file.
func ExtractFile(x Extractor, file types.File, filesDir string, w io.Writer) types.ExtractionStatus {
	outDir := filepath.Join(filesDir, textDir)
	base := strings.TrimSuffix(filepath.Base(file.PDFPath), filepath.Ext(file.PDFPath))
	txtPath := filepath.Join(outDir, base+".txt")

	if _, err := os.Stat(txtPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return types.ExtractionNone
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ExtractionFailed
	}

	lines, err := x.Lines(file.PDFPath, w)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ExtractionFailed
	}
	if len(lines) == 0 {
		fmt.Fprintf(w, "failed:  %s (no extractable text)\n", base)
		return types.ExtractionFailed
	}

	content := addFrontmatter(file, strings.Join(lines, "\n")+"\n")

	if err := os.WriteFile(txtPath, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ExtractionFailed
	}

	fmt.Fprintf(w, "extracted: %s (%d lines)\n", base, len(lines))
	return types.ExtractionDone
}

// ExtractBatch processes a list of files through the extractor, printing
// per-file status to w and returning a summary.
func ExtractBatch(x Extractor, files []types.File, filesDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, f := range files {
		status := ExtractFile(x, f, filesDir, w)
		switch status {
		case types.ExtractionDone:
			result.Extracted++
		case types.ExtractionNone:
			result.Skipped++
		case types.ExtractionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result
}

// ExtractPaths builds File records from raw PDF paths and delegates to
// ExtractBatch. Each path is turned into a minimal File with ID derived
// from the filename.
func ExtractPaths(x Extractor, pdfPaths []string, filesDir string, w io.Writer) BatchResult {
	files := make([]types.File, len(pdfPaths))
	for i, p := range pdfPaths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		files[i] = types.File{
			ID:      base,
			PDFPath: p,
		}
	}
	return ExtractBatch(x, files, filesDir, w)
}

// addFrontmatter prepends YAML frontmatter to the extracted text content.
func addFrontmatter(file types.File, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "file_id: %q\n", file.ID)
	fmt.Fprintf(&b, "source_pdf: %q\n", file.PDFPath)
	fmt.Fprintf(&b, "extracted_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}
