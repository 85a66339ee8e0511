// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/drive-text/pkg/types"
)

// fakeExtractor returns canned lines per PDF path, keyed by base name.
type fakeExtractor struct {
	lines map[string][]string
	errs  map[string]error
}

func (f fakeExtractor) Lines(pdfPath string, warn io.Writer) ([]string, error) {
	base := filepath.Base(pdfPath)
	if err, ok := f.errs[base]; ok {
		return nil, err
	}
	return f.lines[base], nil
}

func TestExtractFile(t *testing.T) {
	filesDir := t.TempDir()
	x := fakeExtractor{lines: map[string][]string{
		"doc1.pdf": {"line one", "line two"},
	}}
	file := types.File{ID: "doc1", PDFPath: "raw/doc1.pdf"}

	var buf bytes.Buffer
	status := ExtractFile(x, file, filesDir, &buf)
	if status != types.ExtractionDone {
		t.Fatalf("status = %v, want %v", status, types.ExtractionDone)
	}

	data, err := os.ReadFile(filepath.Join(filesDir, "text", "doc1.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Errorf("output missing frontmatter: %q", content)
	}
	for _, want := range []string{`file_id: "doc1"`, `source_pdf: "raw/doc1.pdf"`, "extracted_at:"} {
		if !strings.Contains(content, want) {
			t.Errorf("frontmatter missing %q in %q", want, content)
		}
	}
	if !strings.HasSuffix(content, "line one\nline two\n") {
		t.Errorf("output body = %q, want trailing lines", content)
	}
	if !strings.Contains(buf.String(), "extracted: doc1 (2 lines)") {
		t.Errorf("status output = %q", buf.String())
	}
}

func TestExtractFileSkipsExisting(t *testing.T) {
	filesDir := t.TempDir()
	textDirPath := filepath.Join(filesDir, "text")
	if err := os.MkdirAll(textDirPath, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(textDirPath, "doc1.txt"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	x := fakeExtractor{lines: map[string][]string{"doc1.pdf": {"new content"}}}
	var buf bytes.Buffer
	status := ExtractFile(x, types.File{ID: "doc1", PDFPath: "raw/doc1.pdf"}, filesDir, &buf)
	if status != types.ExtractionNone {
		t.Fatalf("status = %v, want %v", status, types.ExtractionNone)
	}

	data, _ := os.ReadFile(filepath.Join(textDirPath, "doc1.txt"))
	if string(data) != "existing" {
		t.Errorf("existing output overwritten: %q", data)
	}
	if !strings.Contains(buf.String(), "skipped: doc1") {
		t.Errorf("status output = %q", buf.String())
	}
}

func TestExtractFileError(t *testing.T) {
	x := fakeExtractor{errs: map[string]error{"broken.pdf": errors.New("corrupt xref")}}
	var buf bytes.Buffer
	status := ExtractFile(x, types.File{ID: "broken", PDFPath: "raw/broken.pdf"}, t.TempDir(), &buf)
	if status != types.ExtractionFailed {
		t.Fatalf("status = %v, want %v", status, types.ExtractionFailed)
	}
	if !strings.Contains(buf.String(), "failed:") || !strings.Contains(buf.String(), "corrupt xref") {
		t.Errorf("status output = %q", buf.String())
	}
}

func TestExtractFileNoText(t *testing.T) {
	filesDir := t.TempDir()
	x := fakeExtractor{lines: map[string][]string{"scanned.pdf": nil}}
	var buf bytes.Buffer
	status := ExtractFile(x, types.File{ID: "scanned", PDFPath: "raw/scanned.pdf"}, filesDir, &buf)
	if status != types.ExtractionFailed {
		t.Fatalf("status = %v, want %v", status, types.ExtractionFailed)
	}
	if !strings.Contains(buf.String(), "no extractable text") {
		t.Errorf("status output = %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(filesDir, "text", "scanned.txt")); err == nil {
		t.Error("empty output file written")
	}
}

func TestExtractBatch(t *testing.T) {
	filesDir := t.TempDir()
	textDirPath := filepath.Join(filesDir, "text")
	if err := os.MkdirAll(textDirPath, 0o755); err != nil {
		t.Fatal(err)
	}
	// doc2 already extracted.
	if err := os.WriteFile(filepath.Join(textDirPath, "doc2.txt"), []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}

	x := fakeExtractor{
		lines: map[string][]string{"doc1.pdf": {"text"}},
		errs:  map[string]error{"doc3.pdf": errors.New("boom")},
	}
	files := []types.File{
		{ID: "doc1", PDFPath: "raw/doc1.pdf"},
		{ID: "doc2", PDFPath: "raw/doc2.pdf"},
		{ID: "doc3", PDFPath: "raw/doc3.pdf"},
	}

	var buf bytes.Buffer
	result := ExtractBatch(x, files, filesDir, &buf)

	if result.Extracted != 1 {
		t.Errorf("Extracted = %d, want 1", result.Extracted)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false, want true")
	}
	if !strings.Contains(buf.String(), "Batch summary: 1 extracted, 1 skipped, 1 failed (total: 3)") {
		t.Errorf("summary output = %q", buf.String())
	}
}

func TestExtractPaths(t *testing.T) {
	filesDir := t.TempDir()
	x := fakeExtractor{lines: map[string][]string{
		"a.pdf": {"alpha"},
		"b.pdf": {"beta"},
	}}

	var buf bytes.Buffer
	result := ExtractPaths(x, []string{"some/dir/a.pdf", "other/b.pdf"}, filesDir, &buf)
	if result.Extracted != 2 {
		t.Fatalf("Extracted = %d, want 2", result.Extracted)
	}

	for _, base := range []string{"a", "b"} {
		path := filepath.Join(filesDir, "text", base+".txt")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}
	if !strings.Contains(buf.String(), fmt.Sprintf("extracted: %s (1 lines)", "a")) {
		t.Errorf("status output = %q", buf.String())
	}
}
