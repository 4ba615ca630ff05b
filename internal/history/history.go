// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records the outcome of every attempted conversion in
// a local SQLite database, queryable with the history subcommand.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mdconvert/pkg/types"
)

// Entry is one recorded conversion attempt.
type Entry struct {
	ID         int64                   `json:"id" yaml:"id"`
	SourcePath string                  `json:"source_path" yaml:"source_path"`
	SourceHash string                  `json:"source_hash" yaml:"source_hash"`
	Kind       types.SourceKind        `json:"kind" yaml:"kind"`
	Backend    types.ConversionBackend `json:"backend" yaml:"backend"`
	Status     types.JobStatus         `json:"status" yaml:"status"`
	Duration   time.Duration           `json:"duration" yaml:"duration"`
	Error      string                  `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at" yaml:"created_at"`
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the
// schema on first use.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL,
			source_hash TEXT,
			kind TEXT NOT NULL,
			backend TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source_path ON conversions(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one conversion attempt. A zero CreatedAt is stamped
// with the current time.
func (s *Store) Record(e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO conversions
			(source_path, source_hash, kind, backend, status, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SourcePath, e.SourceHash, string(e.Kind), string(e.Backend), string(e.Status),
		e.Duration.Milliseconds(), e.Error, e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", e.SourcePath, err)
	}
	return nil
}

// List returns the most recent entries, newest first. A zero limit
// means no limit; a non-empty status filters by terminal state.
func (s *Store) List(limit int, status types.JobStatus) ([]Entry, error) {
	query := `SELECT id, source_path, source_hash, kind, backend, status, duration_ms, error, created_at
		FROM conversions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind, backend, status, created string
		var durationMS int64
		if err := rows.Scan(&e.ID, &e.SourcePath, &e.SourceHash, &kind, &backend,
			&status, &durationMS, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Kind = types.SourceKind(kind)
		e.Backend = types.ConversionBackend(backend)
		e.Status = types.JobStatus(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes all entries to w as a YAML document.
func (s *Store) ExportYAML(w io.Writer) error {
	entries, err := s.List(0, "")
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(struct {
		Conversions []Entry `yaml:"conversions"`
	}{Conversions: entries})
}

// ExportJSON writes all entries to w as indented JSON.
func (s *Store) ExportJSON(w io.Writer) error {
	entries, err := s.List(0, "")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Conversions []Entry `json:"conversions"`
	}{Conversions: entries})
}
