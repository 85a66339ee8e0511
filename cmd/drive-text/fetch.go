package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/drive-text/internal/drive"
	"github.com/pdiddy/drive-text/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "drive-text/0.1"
	defaultFilesDir  = "files"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Download PDFs from Google Drive",
	Long: `Fetch resolves Drive identifiers (bare file IDs, share links, or uc
download links) to PDF files, downloads them, and creates metadata
records. Existing files are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("files-dir", defaultFilesDir, "base directory for files")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more Drive identifiers (file IDs or share links)")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	filesDir, _ := cmd.Flags().GetString("files-dir")

	cfg := fetchConfig(timeout, delay, filesDir)
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := drive.FetchBatch(context.Background(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", result.Failed)
	}
	return nil
}

// fetchConfig assembles a FetchConfig from flags, config file, and
// secrets, applying defaults for unset values.
func fetchConfig(timeout, delay time.Duration, filesDir string) types.FetchConfig {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if delay == 0 {
		delay = defaultDelay
	}
	if filesDir == "" {
		filesDir = defaultFilesDir
	}

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		FilesDir:      filesDir,
		APIKey:        secretDefault("drive-api-key", viper.GetString("fetch.api_key")),
	}
}
