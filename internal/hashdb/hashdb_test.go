// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hashdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, path string)
		wantLen int
	}{
		{
			name:    "missing file yields empty store",
			setup:   func(t *testing.T, path string) {},
			wantLen: 0,
		},
		{
			name: "valid file round-trips",
			setup: func(t *testing.T, path string) {
				writeFile(t, path, `{"/a/b.pdf": "abc123", "/a/c.docx": "def456"}`)
			},
			wantLen: 2,
		},
		{
			name: "malformed file treated as empty",
			setup: func(t *testing.T, path string) {
				writeFile(t, path, "{not json")
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hashes.json")
			tt.setup(t, path)

			s := Load(path)
			assert.Equal(t, tt.wantLen, s.Len())
		})
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeFile(t, path, "hello world")

	got, err := FileHash(path)
	require.NoError(t, err)
	// echo -n "hello world" | sha256sum
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", got)

	_, err = FileHash(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestShouldProcess(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "hashes.json"))
	s.Update("/docs/a.pdf", "hash-a")

	tests := []struct {
		name  string
		path  string
		hash  string
		force bool
		want  bool
	}{
		{"unseen path", "/docs/new.pdf", "whatever", false, true},
		{"unchanged hash", "/docs/a.pdf", "hash-a", false, false},
		{"changed hash", "/docs/a.pdf", "hash-b", false, true},
		{"force overrides unchanged", "/docs/a.pdf", "hash-a", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ShouldProcess(tt.path, tt.hash, tt.force))
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "hashes.json")

	s := Load(path)
	s.Update("/docs/a.pdf", "hash-a")
	s.Update("/docs/b.docx", "hash-b")
	require.NoError(t, s.Save())

	reloaded := Load(path)
	assert.Equal(t, 2, reloaded.Len())
	h, ok := reloaded.Hash("/docs/a.pdf")
	assert.True(t, ok)
	assert.Equal(t, "hash-a", h)
	assert.False(t, reloaded.ShouldProcess("/docs/b.docx", "hash-b", false))
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	writeFile(t, path, `{"/stale/entry.pdf": "old"}`)

	s := Load(path)
	assert.Equal(t, 1, s.Len())
	s.Update("/docs/a.pdf", "hash-a")
	require.NoError(t, s.Save())

	reloaded := Load(path)
	assert.Equal(t, 2, reloaded.Len())
}
