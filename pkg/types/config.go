package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "drive-text/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// FilesDir is the base directory for files (contains raw/, metadata/, text/).
	FilesDir string `json:"files_dir" yaml:"files_dir"`

	// APIKey is an optional Google Drive API key. When set, the fetch stage
	// tries the Drive v3 files endpoint before the public uc endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ExtractionConfig holds settings for the text extraction stage.
type ExtractionConfig struct {
	// FilesDir is the base directory for files (contains raw/, metadata/, text/).
	FilesDir string `json:"files_dir" yaml:"files_dir"`
}

// IndexConfig holds settings for the local search index.
type IndexConfig struct {
	// FilesDir is the base directory for files (contains text/, index/).
	FilesDir string `json:"files_dir" yaml:"files_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Index      IndexConfig      `json:"index" yaml:"index"`
}
