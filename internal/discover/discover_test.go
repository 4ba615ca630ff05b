// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mdconvert/pkg/types"
)

// touch creates an empty file, making parent directories as needed.
func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func names(jobs []types.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = filepath.Base(j.SourcePath)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path    string
		want    types.SourceKind
		wantErr bool
	}{
		{"report.pdf", types.KindPDF, false},
		{"REPORT.PDF", types.KindPDF, false},
		{"memo.docx", types.KindOffice, false},
		{"slides.PPTX", types.KindOffice, false},
		{"old.doc", types.KindOffice, false},
		{"deck.ppt", types.KindOffice, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, err := Classify(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDiscoverNonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "b.docx"))
	touch(t, filepath.Join(dir, "C.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "nested.pdf"))

	res, err := Discover(dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"C.PDF", "a.pdf", "b.docx"}, names(res.Jobs))
	assert.Empty(t, res.Collisions)
	for _, j := range res.Jobs {
		assert.Equal(t, ".", j.RelDir)
		assert.True(t, filepath.IsAbs(j.SourcePath))
	}
}

func TestDiscoverRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "top.pdf"))
	touch(t, filepath.Join(dir, "sub", "nested.docx"))
	touch(t, filepath.Join(dir, "sub", "deep", "leaf.pptx"))
	touch(t, filepath.Join(dir, "sub", "skip.txt"))

	res, err := Discover(dir, true)
	require.NoError(t, err)
	require.Len(t, res.Jobs, 3)

	byName := make(map[string]types.Job)
	for _, j := range res.Jobs {
		byName[filepath.Base(j.SourcePath)] = j
	}
	assert.Equal(t, ".", byName["top.pdf"].RelDir)
	assert.Equal(t, "sub", byName["nested.docx"].RelDir)
	assert.Equal(t, filepath.Join("sub", "deep"), byName["leaf.pptx"].RelDir)
	assert.Equal(t, types.KindOffice, byName["nested.docx"].Kind)
	assert.Equal(t, types.KindPDF, byName["top.pdf"].Kind)
}

func TestDiscoverOutputCollision(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "report.pdf"))
	touch(t, filepath.Join(dir, "report.docx"))

	res, err := Discover(dir, false)
	require.NoError(t, err)

	// Lexicographic order makes report.docx the first claimant.
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "report.docx", filepath.Base(res.Jobs[0].SourcePath))
	require.Len(t, res.Collisions, 1)
	assert.Equal(t, "report.pdf", filepath.Base(res.Collisions[0]))
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}
