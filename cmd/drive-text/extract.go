package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/drive-text/internal/drive"
	"github.com/pdiddy/drive-text/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [identifiers|paths...]",
	Short: "Extract text from fetched PDFs",
	Long: `Extract converts fetched PDFs into plain text files under
files/text/. Arguments may be Drive identifiers of already-fetched
files or paths to local PDFs. With --batch, every PDF under files/raw/
that has no text output yet is processed.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("files-dir", defaultFilesDir, "base directory for files")
	extractCmd.Flags().Bool("batch", false, "process all fetched PDFs in files-dir")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	filesDir, _ := cmd.Flags().GetString("files-dir")
	batch, _ := cmd.Flags().GetBool("batch")

	var pdfPaths []string
	switch {
	case batch:
		matches, err := filepath.Glob(filepath.Join(filesDir, "raw", "*.pdf"))
		if err != nil {
			return fmt.Errorf("listing fetched PDFs: %w", err)
		}
		pdfPaths = matches
	case len(args) > 0:
		for _, arg := range args {
			pdfPaths = append(pdfPaths, resolveExtractTarget(arg, filesDir))
		}
	default:
		return fmt.Errorf("provide identifiers or paths, or use --batch")
	}

	if len(pdfPaths) == 0 {
		fmt.Println("Nothing to extract.")
		return nil
	}

	var x extract.RowExtractor
	result := extract.ExtractPaths(x, pdfPaths, filesDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed extraction", result.Failed)
	}
	return nil
}

// resolveExtractTarget maps an argument to a PDF path: local paths pass
// through, Drive identifiers resolve to their fetched location.
func resolveExtractTarget(arg, filesDir string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if idType, fileID := drive.Classify(arg); idType != drive.TypeUnknown {
		return filepath.Join(filesDir, "raw", fileID+".pdf")
	}
	return arg
}
