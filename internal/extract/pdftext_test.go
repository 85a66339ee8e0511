// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// buildPDF assembles a minimal classic-xref PDF with one Helvetica font
// and one uncompressed content stream per page. Each inner slice is the
// text lines of one page, placed top to bottom. Pages listed (1-based)
// in badContents get a content stream whose Td operator is missing an
// operand, which fails interpretation.
func buildPDF(pages [][]string, badContents map[int]bool) []byte {
	var buf bytes.Buffer
	var offsets []int

	addObject := func(body string) int {
		offsets = append(offsets, buf.Len())
		num := len(offsets)
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
		return num
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	addObject("<< /Type /Catalog /Pages 2 0 R >>")
	addObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages)))
	addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, pageLines := range pages {
		addObject(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))

		var content strings.Builder
		if badContents[i+1] {
			content.WriteString("BT 1 Td ET\n")
		} else {
			y := 720
			for _, line := range pageLines {
				fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, line)
				y -= 16
			}
		}
		addObject(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream",
			content.Len(), content.String()))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

func writeTestPDF(t *testing.T, pages [][]string, badContents map[int]bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, buildPDF(pages, badContents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLinesSinglePage(t *testing.T) {
	path := writeTestPDF(t, [][]string{
		{"International Cyber Laws", "Chapter 1: Jurisdiction", "Page 1 of 42"},
	}, nil)

	var warn bytes.Buffer
	var x RowExtractor
	lines, err := x.Lines(path, &warn)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	want := []string{"International Cyber Laws", "Chapter 1: Jurisdiction", "Page 1 of 42"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if warn.Len() != 0 {
		t.Errorf("unexpected warnings: %q", warn.String())
	}
}

func TestLinesMultiPageOrder(t *testing.T) {
	path := writeTestPDF(t, [][]string{
		{"first page line 1", "first page line 2"},
		{"second page line 1"},
		{"third page line 1"},
	}, nil)

	var warn bytes.Buffer
	var x RowExtractor
	lines, err := x.Lines(path, &warn)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	want := []string{
		"first page line 1",
		"first page line 2",
		"second page line 1",
		"third page line 1",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestLinesTrimsAndDropsBlank(t *testing.T) {
	path := writeTestPDF(t, [][]string{
		{"   padded line   ", "    ", "", "last line"},
	}, nil)

	var warn bytes.Buffer
	var x RowExtractor
	lines, err := x.Lines(path, &warn)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	want := []string{"padded line", "last line"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestLinesNoText(t *testing.T) {
	path := writeTestPDF(t, [][]string{{}, {}}, nil)

	var warn bytes.Buffer
	var x RowExtractor
	lines, err := x.Lines(path, &warn)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("lines = %q, want empty", lines)
	}
}

func TestLinesSkipsBadPage(t *testing.T) {
	path := writeTestPDF(t, [][]string{
		{"  before the bad page  ", "   "},
		{"unreachable"},
		{"after the bad page"},
	}, map[int]bool{2: true})

	var warn bytes.Buffer
	var x RowExtractor
	lines, err := x.Lines(path, &warn)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	want := []string{"before the bad page", "after the bad page"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if !strings.Contains(warn.String(), "page 2") {
		t.Errorf("warnings = %q, want mention of page 2", warn.String())
	}
}

func TestLinesMissingFile(t *testing.T) {
	var warn bytes.Buffer
	var x RowExtractor
	_, err := x.Lines(filepath.Join(t.TempDir(), "nope.pdf"), &warn)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFirstLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	tests := []struct {
		name string
		in   []string
		n    int
		want []string
	}{
		{"fewer than n", lines, 10, lines},
		{"exactly n", lines, 4, lines},
		{"truncated", lines, 2, []string{"a", "b"}},
		{"zero", lines, 0, nil},
		{"negative", lines, -1, nil},
		{"empty input", nil, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstLines(tt.in, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FirstLines(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
