// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hashdb persists a path-to-content-hash mapping used to skip
// unchanged files across batch runs. The database is a flat JSON file
// keyed by absolute source path; it is loaded once at the start of a
// run and saved once at the end.
package hashdb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is an in-memory view of the hash database. It assumes a single
// process and a single run; there is no locking against concurrent
// external mutation.
type Store struct {
	path   string
	hashes map[string]string
}

// Load reads the database at path. A missing or malformed file yields
// an empty store, which makes every file look changed and forces a full
// reprocess rather than aborting the run.
func Load(path string) *Store {
	s := &Store{path: path, hashes: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.hashes); err != nil {
		fmt.Fprintf(os.Stderr, "warning: hash database %s is malformed, reprocessing all files: %v\n", path, err)
		s.hashes = make(map[string]string)
	}
	return s
}

// FileHash returns the hex-encoded SHA-256 digest of the file contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ShouldProcess reports whether the file at path needs conversion:
// always under force, otherwise when the path is unknown or its stored
// hash differs from hash.
func (s *Store) ShouldProcess(path, hash string, force bool) bool {
	if force {
		return true
	}
	stored, ok := s.hashes[path]
	return !ok || stored != hash
}

// Hash returns the stored hash for path, if any.
func (s *Store) Hash(path string) (string, bool) {
	h, ok := s.hashes[path]
	return h, ok
}

// Update upserts the hash record for path.
func (s *Store) Update(path, hash string) {
	s.hashes[path] = hash
}

// Len returns the number of recorded paths.
func (s *Store) Len() int {
	return len(s.hashes)
}

// Save writes the full mapping back to disk, replacing prior contents.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating hash database directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(s.hashes, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hash database: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing hash database %s: %w", s.path, err)
	}
	return nil
}
