// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store maintains a local SQLite catalog of fetched files and a
// full-text index over their extracted text.
//
// The schema uses an FTS5 virtual table, so go-sqlite3 must be compiled
// with the sqlite_fts5 build tag (the mage Build and Test targets pass
// it).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/drive-text/pkg/types"
)

const (
	textDir     = "text"
	indexDir    = "index"
	metadataDir = "metadata"
	dbFile      = "drive-text.db"
)

// Store manages the catalog and search index SQLite database.
type Store struct {
	db         *sql.DB
	filesDir   string
	maxResults int
}

// NewStore opens or creates the database at filesDir/index/drive-text.db
// and creates the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.FilesDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		filesDir:   cfg.FilesDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			name TEXT,
			source_url TEXT,
			pdf_path TEXT,
			text_path TEXT,
			size INTEGER,
			sha256 TEXT,
			fetched_at TEXT,
			extraction_status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id TEXT NOT NULL UNIQUE REFERENCES files(id),
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_file_id ON documents(file_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(content, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO documents_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index build run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extracted text files from filesDir/text/ and populates
// the database. It detects new, changed, and unchanged files by mod
// time for incremental updates.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	txtDir := filepath.Join(s.filesDir, textDir)
	metaDir := filepath.Join(s.filesDir, metadataDir)

	entries, err := os.ReadDir(txtDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading text directory %s: %w", txtDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		fileID := strings.TrimSuffix(entry.Name(), ".txt")
		filePath := filepath.Join(txtDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file_id = ?`, fileID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", fileID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileID, err)
			summary.Failed++
			continue
		}

		content := stripFrontmatter(string(data))
		file := loadFileMetadata(metaDir, fileID)

		if err := s.ingestFile(ctx, fileID, content, filePath, file, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", fileID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s\n", fileID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestFile(ctx context.Context, fileID, content, textPath string, file *types.File, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("deleting old document: %w", err)
		}
	}

	if file != nil {
		fetchedAt := ""
		if !file.FetchedAt.IsZero() {
			fetchedAt = file.FetchedAt.Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO files (id, name, source_url, pdf_path, text_path, size, sha256, fetched_at, extraction_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name=excluded.name, source_url=excluded.source_url,
				pdf_path=excluded.pdf_path, text_path=excluded.text_path,
				size=excluded.size, sha256=excluded.sha256,
				fetched_at=excluded.fetched_at, extraction_status=excluded.extraction_status`,
			file.ID, file.Name, file.SourceURL, file.PDFPath, textPath,
			file.Size, file.SHA256, fetchedAt, string(types.ExtractionDone),
		)
		if err != nil {
			return fmt.Errorf("upserting file: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO files (id, text_path, extraction_status) VALUES (?, ?, ?)`,
			fileID, textPath, string(types.ExtractionDone),
		)
		if err != nil {
			return fmt.Errorf("inserting file stub: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (file_id, content) VALUES (?, ?)`,
		fileID, content,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		fileID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// stripFrontmatter removes a leading YAML frontmatter block so delimiter
// and key noise does not pollute the search index.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return content
	}
	return strings.TrimLeft(rest[idx+len("\n---\n"):], "\n")
}

// loadFileMetadata reads a File record from metaDir/[fileID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadFileMetadata(metaDir, fileID string) *types.File {
	path := filepath.Join(metaDir, fileID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var file types.File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil
	}
	return &file
}
