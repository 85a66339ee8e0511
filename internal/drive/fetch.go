// Package drive downloads PDF files shared on Google Drive and creates
// metadata records.
package drive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/drive-text/internal/httputil"
	"github.com/pdiddy/drive-text/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// pdfMagic is the signature every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// maxConfirmPageSize bounds how much of an HTML interstitial is read
// while looking for the confirmation form.
const maxConfirmPageSize = 2 << 20

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Files      []*types.File
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchFile resolves a single identifier, downloads the PDF, and writes
// metadata. If the PDF already exists on disk, it skips the download.
// The skipped return value indicates whether the download was skipped.
func FetchFile(ctx context.Context, client *http.Client, identifier string, cfg types.FetchConfig, w io.Writer) (file *types.File, skipped bool, err error) {
	idType, fileID := Classify(identifier)
	if idType == TypeUnknown {
		return nil, false, fmt.Errorf("unrecognized Drive identifier: %q", identifier)
	}

	pdfPath := filepath.Join(cfg.FilesDir, rawDir, fileID+".pdf")
	metaPath := filepath.Join(cfg.FilesDir, metadataDir, fileID+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", fileID)
		f, readErr := readMetadata(metaPath)
		if readErr != nil {
			f = &types.File{ID: fileID, PDFPath: pdfPath}
		}
		return f, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.FilesDir, rawDir),
		filepath.Join(cfg.FilesDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", fileID, idType)

	// The authenticated API endpoint skips the virus-scan interstitial,
	// so prefer it when a key is configured.
	f := &types.File{
		ID:               fileID,
		PDFPath:          pdfPath,
		ExtractionStatus: types.ExtractionNone,
	}
	if cfg.APIKey != "" {
		if err := downloadFile(ctx, client, APIURL(fileID, cfg.APIKey), pdfPath, cfg, f); err == nil {
			f.Source = "api"
		} else {
			fmt.Fprintf(w, "  warning: Drive API download failed, falling back to public endpoint: %v\n", err)
		}
	}
	if f.Source == "" {
		if err := downloadFile(ctx, client, DownloadURL(fileID), pdfPath, cfg, f); err != nil {
			return nil, false, fmt.Errorf("downloading %s: %w", fileID, err)
		}
		f.Source = "uc"
	}
	f.FetchedAt = time.Now().UTC()

	if err := writeMetadata(f, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", fileID, err)
	}

	return f, false, nil
}

// FetchBatch processes multiple identifiers, printing per-item status
// and returning a summary. It continues after individual failures and
// applies a delay between consecutive downloads.
func FetchBatch(ctx context.Context, client *http.Client, identifiers []string, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, id := range identifiers {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		file, wasSkipped, err := FetchFile(ctx, client, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Files = append(result.Files, file)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches rawURL to destPath using a temporary file. Drive
// serves an HTML confirmation page instead of the file when the PDF is
// too large to virus-scan; in that case the confirmed URL is followed
// once. The response is verified to start with the PDF signature before
// it replaces destPath, and f is updated with the download details.
func downloadFile(ctx context.Context, client *http.Client, rawURL, destPath string, cfg types.FetchConfig, f *types.File) error {
	resp, err := get(ctx, client, rawURL, cfg)
	if err != nil {
		return err
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		page, readErr := io.ReadAll(io.LimitReader(resp.Body, maxConfirmPageSize))
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading confirmation page: %w", readErr)
		}
		confirmURL, err := parseConfirmPage(page, rawURL)
		if err != nil {
			return err
		}
		if resp, err = get(ctx, client, confirmURL, cfg); err != nil {
			return err
		}
		rawURL = confirmURL
	}
	defer resp.Body.Close()

	if name := dispositionFilename(resp.Header.Get("Content-Disposition")); name != "" {
		f.Name = name
	}

	// Check the signature before committing anything to disk.
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		return fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("response from %s is not a PDF", rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	hash := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(tmpFile, hash), io.MultiReader(bytes.NewReader(head), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	f.SourceURL = rawURL
	f.Size = n
	f.SHA256 = hex.EncodeToString(hash.Sum(nil))
	return nil
}

// get issues a single GET through the throttling-aware retry helper and
// checks for a 200 response.
func get(ctx context.Context, client *http.Client, rawURL string, cfg types.FetchConfig) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		status := resp.Status
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %s from %s", status, rawURL)
	}
	return resp, nil
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

// dispositionFilename extracts the filename from a Content-Disposition
// header, returning "" when absent or unparseable.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// writeMetadata writes a File record to a YAML sidecar.
func writeMetadata(file *types.File, path string) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a File record from a YAML sidecar.
func readMetadata(path string) (*types.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file types.File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}
