// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/drive-text/internal/store"
	"github.com/pdiddy/drive-text/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local search index (build, search, history)",
	Long: `Index manages a local SQLite database built from extracted text.
Use subcommands to build the index, search it, or list fetched files.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Ingest extracted text into the search index",
	Long: `Build reads text files from files/text/, ingests them into a SQLite
database with FTS5 indexing, and catalogs their metadata. Unchanged
files are skipped on subsequent runs.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over extracted text",
	Long: `Search runs an FTS5 full-text query against the indexed text and
prints matching files with a snippet of the matched passage.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	hits, err := s.Search(context.Background(), query, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(hits, jsonOutput)
}

func formatSearchOutput(hits []store.SearchHit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, h := range hits {
		name := h.Name
		if name == "" {
			name = h.FileID
		}
		fmt.Fprintf(os.Stdout, "%2d. %s\n    %s\n", i+1, name, h.Snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

// --- history subcommand ---

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List cataloged files, newest first",
	RunE:  runIndexHistory,
}

func runIndexHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	files, err := s.History(context.Background())
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Println("No files cataloged.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %10s  %-20s  %s\n",
		"ID", "Name", "Size", "Fetched", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, f := range files {
		id := f.ID
		if len(id) > 36 {
			id = id[:33] + "..."
		}
		name := f.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fetched := ""
		if !f.FetchedAt.IsZero() {
			fetched = f.FetchedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %10d  %-20s  %s\n",
			id, name, f.Size, fetched, f.ExtractionStatus)
	}

	fmt.Fprintf(os.Stdout, "\n%d files\n", len(files))
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	filesDir, _ := cmd.Flags().GetString("files-dir")
	if filesDir == "" {
		filesDir = defaultFilesDir
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.IndexConfig{
		FilesDir:   filesDir,
		MaxResults: maxResults,
	}
	return store.NewStore(cfg)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("files-dir", defaultFilesDir, "base directory for files (contains text/, index/)")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	// Search flags.
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexHistoryCmd)

	rootCmd.AddCommand(indexCmd)
}
