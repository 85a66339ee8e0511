// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExtractionStatus indicates the state of text extraction for a fetched file.
type ExtractionStatus string

const (
	ExtractionNone   ExtractionStatus = "none"
	ExtractionDone   ExtractionStatus = "extracted"
	ExtractionFailed ExtractionStatus = "failed"
)

// File holds metadata and local paths for a PDF fetched from Google Drive.
type File struct {
	// ID is the Drive file identifier (e.g. "1rZJPYvG4QmXXVMkhUmfaSRX3kS24lc64").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL the PDF was actually downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// TextPath is the local path to the extracted text, empty until extraction.
	TextPath string `json:"text_path,omitempty" yaml:"text_path,omitempty"`

	// Name is the filename reported by Drive, when known.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Size is the downloaded PDF size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SHA256 is the hex digest of the downloaded PDF.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// FetchedAt records when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Source identifies which endpoint served the PDF ("uc" or "api").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// ExtractionStatus tracks whether text has been extracted from the PDF.
	ExtractionStatus ExtractionStatus `json:"extraction_status" yaml:"extraction_status"`
}
