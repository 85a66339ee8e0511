// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/drive-text/pkg/types"
)

// SearchHit is one full-text match with its source file and a snippet
// of the matched passage.
type SearchHit struct {
	FileID  string `json:"file_id" yaml:"file_id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 match query over the indexed text and returns
// hits ordered by relevance. maxResults <= 0 uses the store default.
func (s *Store) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.file_id, f.name,
			snippet(documents_fts, 0, '[', ']', '…', 12)
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		LEFT JOIN files f ON d.file_id = f.id
		WHERE documents_fts MATCH ?
		ORDER BY documents_fts.rank
		LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var (
			hit  SearchHit
			name sql.NullString
		)
		if err := rows.Scan(&hit.FileID, &name, &hit.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if name.Valid {
			hit.Name = name.String
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// History lists cataloged files, most recently fetched first.
func (s *Store) History(ctx context.Context) ([]types.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_url, pdf_path, text_path, size, sha256, fetched_at, extraction_status
		FROM files
		ORDER BY fetched_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []types.File
	for rows.Next() {
		var (
			f         types.File
			name      sql.NullString
			sourceURL sql.NullString
			pdfPath   sql.NullString
			textPath  sql.NullString
			size      sql.NullInt64
			digest    sql.NullString
			fetchedAt sql.NullString
			status    sql.NullString
		)
		if err := rows.Scan(&f.ID, &name, &sourceURL, &pdfPath, &textPath, &size, &digest, &fetchedAt, &status); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		f.Name = name.String
		f.SourceURL = sourceURL.String
		f.PDFPath = pdfPath.String
		f.TextPath = textPath.String
		f.Size = size.Int64
		f.SHA256 = digest.String
		if fetchedAt.Valid && fetchedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, fetchedAt.String); err == nil {
				f.FetchedAt = t
			}
		}
		f.ExtractionStatus = types.ExtractionStatus(status.String)
		files = append(files, f)
	}

	return files, rows.Err()
}
