package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/drive-text/internal/drive"
	"github.com/pdiddy/drive-text/internal/extract"
)

const (
	// defaultFileID points at "Internation cyber laws.pdf", the shared
	// document this tool was first built to read.
	defaultFileID = "1rZJPYvG4QmXXVMkhUmfaSRX3kS24lc64"

	defaultPreviewLines = 10

	bannerWidth = 60
)

var previewCmd = &cobra.Command{
	Use:   "preview [identifier|path]",
	Short: "Print the first lines of text from a PDF",
	Long: `Preview downloads a Drive-hosted PDF (reusing the local copy when one
exists), extracts its text, and prints the first lines to stdout. With
no argument it targets the default shared document. A path to a local
.pdf file skips the network entirely.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("lines", defaultPreviewLines, "number of text lines to print")
	previewCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	previewCmd.Flags().String("files-dir", defaultFilesDir, "base directory for files")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	maxLines, _ := cmd.Flags().GetInt("lines")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	filesDir, _ := cmd.Flags().GetString("files-dir")

	target := defaultFileID
	if len(args) == 1 {
		target = args[0]
	}

	pdfPath, label, err := resolvePreviewTarget(target, timeout, filesDir)
	if err != nil {
		return err
	}

	var x extract.RowExtractor
	lines, err := x.Lines(pdfPath, os.Stdout)
	if err != nil {
		return err
	}
	first := extract.FirstLines(lines, maxLines)

	banner := strings.Repeat("=", bannerWidth)
	fmt.Printf("\n%s\n", banner)
	fmt.Printf("First %d lines of %q:\n", len(first), label)
	fmt.Printf("%s\n\n", banner)

	for i, line := range first {
		fmt.Printf("%2d. %s\n", i+1, line)
	}

	fmt.Printf("\n%s\n", banner)
	return nil
}

// resolvePreviewTarget turns the argument into a local PDF path,
// downloading through the fetch stage when it is a Drive identifier.
// It returns the path and a human-readable label for the banner.
func resolvePreviewTarget(target string, timeout time.Duration, filesDir string) (string, string, error) {
	if strings.HasSuffix(strings.ToLower(target), ".pdf") {
		if _, err := os.Stat(target); err == nil {
			return target, filepath.Base(target), nil
		}
	}

	cfg := fetchConfig(timeout, 0, filesDir)
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	file, skipped, err := drive.FetchFile(context.Background(), client, target, cfg, os.Stdout)
	if err != nil {
		return "", "", err
	}
	if !skipped {
		fmt.Printf("downloaded %d bytes\n", file.Size)
	}

	label := file.Name
	if label == "" {
		label = file.ID
	}
	return file.PDFPath, label, nil
}
