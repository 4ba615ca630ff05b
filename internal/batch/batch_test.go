// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mdconvert/internal/discover"
	"github.com/pdiddy/mdconvert/internal/hashdb"
	"github.com/pdiddy/mdconvert/internal/history"
	"github.com/pdiddy/mdconvert/pkg/types"
)

// fakeConverter writes canned Markdown, or fails for configured paths.
type fakeConverter struct {
	failFor map[string]bool // base name of pdf -> fail
	calls   []string
}

func (f *fakeConverter) Convert(pdfPath, mdPath, imagesDir string) error {
	f.calls = append(f.calls, filepath.Base(pdfPath))
	if f.failFor[filepath.Base(pdfPath)] {
		return errors.New("engine crashed")
	}
	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(mdPath, []byte("# converted\n"), 0o644)
}

// fakeOffice renders a placeholder PDF next to the requested outDir.
type fakeOffice struct {
	err   error
	calls []string
}

func (f *fakeOffice) ConvertToPDF(officePath, outDir string) (string, error) {
	f.calls = append(f.calls, filepath.Base(officePath))
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(officePath)
	pdf := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")
	return pdf, os.WriteFile(pdf, []byte("%PDF-1.4 rendered"), 0o644)
}

// memRecorder collects history entries in memory.
type memRecorder struct {
	entries []history.Entry
}

func (m *memRecorder) Record(e history.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type fixture struct {
	cfg       types.ConvertConfig
	store     *hashdb.Store
	converter *fakeConverter
	office    *fakeOffice
	rec       *memRecorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	fx := &fixture{
		cfg: types.ConvertConfig{
			SourceDir:  filepath.Join(root, "source"),
			OutputDir:  filepath.Join(root, "md"),
			ImagesDir:  filepath.Join(root, "md", "images"),
			TmpPDFDir:  filepath.Join(root, "tmp_pdf"),
			HashDBPath: filepath.Join(root, "file_hashes.json"),
			Backend:    types.BackendMinerU,
		},
		converter: &fakeConverter{failFor: map[string]bool{}},
		office:    &fakeOffice{},
		rec:       &memRecorder{},
	}
	require.NoError(t, os.MkdirAll(fx.cfg.SourceDir, 0o755))
	fx.store = hashdb.Load(fx.cfg.HashDBPath)
	return fx
}

func (fx *fixture) driver() *Driver {
	d := New(fx.cfg, fx.store, fx.converter, fx.office, nil, fx.rec)
	d.verifyPDF = func(string) (int, error) { return 1, nil }
	return d
}

func (fx *fixture) addSource(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(fx.cfg.SourceDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (fx *fixture) jobs(t *testing.T, recursive bool) discover.Result {
	t.Helper()
	res, err := discover.Discover(fx.cfg.SourceDir, recursive)
	require.NoError(t, err)
	return res
}

func TestRunConvertsPDFAndOffice(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")
	fx.addSource(t, "b.docx", "docx-b")

	var log bytes.Buffer
	res := fx.jobs(t, false)
	result := fx.driver().Run(res.Jobs, res.Collisions, &log)

	assert.Equal(t, Result{Converted: 2}, result)
	assert.FileExists(t, filepath.Join(fx.cfg.OutputDir, "a.md"))
	assert.FileExists(t, filepath.Join(fx.cfg.OutputDir, "b.md"))
	assert.Equal(t, []string{"b.docx"}, fx.office.calls)
	assert.Contains(t, log.String(), "Batch summary: 2 converted, 0 skipped, 0 failed (total: 2)")

	// Hash store persisted with both entries.
	reloaded := hashdb.Load(fx.cfg.HashDBPath)
	assert.Equal(t, 2, reloaded.Len())
}

func TestRunSkipsUnchangedFiles(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")

	res := fx.jobs(t, false)
	var first bytes.Buffer
	fx.driver().Run(res.Jobs, nil, &first)

	// Second run over the same content: fresh store from disk, no work.
	fx.store = hashdb.Load(fx.cfg.HashDBPath)
	fx.converter.calls = nil
	var second bytes.Buffer
	result := fx.driver().Run(res.Jobs, nil, &second)

	assert.Equal(t, Result{Skipped: 1}, result)
	assert.Empty(t, fx.converter.calls)
	assert.Contains(t, second.String(), "skipped: a.pdf (unchanged)")
}

func TestRunForceReconverts(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")

	res := fx.jobs(t, false)
	fx.driver().Run(res.Jobs, nil, io.Discard)

	fx.store = hashdb.Load(fx.cfg.HashDBPath)
	fx.cfg.Force = true
	fx.converter.calls = nil
	result := fx.driver().Run(res.Jobs, nil, io.Discard)

	assert.Equal(t, Result{Converted: 1}, result)
	assert.Equal(t, []string{"a.pdf"}, fx.converter.calls)
}

func TestRunReconvertsChangedContent(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")

	res := fx.jobs(t, false)
	fx.driver().Run(res.Jobs, nil, io.Discard)

	fx.addSource(t, "a.pdf", "pdf-a-edited")
	fx.store = hashdb.Load(fx.cfg.HashDBPath)
	fx.converter.calls = nil
	result := fx.driver().Run(res.Jobs, nil, io.Discard)

	assert.Equal(t, Result{Converted: 1}, result)
	assert.Equal(t, []string{"a.pdf"}, fx.converter.calls)
}

func TestRunReconvertsWhenOutputMissing(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")

	res := fx.jobs(t, false)
	fx.driver().Run(res.Jobs, nil, io.Discard)

	// Hash matches, but someone deleted the Markdown output.
	require.NoError(t, os.Remove(filepath.Join(fx.cfg.OutputDir, "a.md")))
	fx.store = hashdb.Load(fx.cfg.HashDBPath)
	result := fx.driver().Run(res.Jobs, nil, io.Discard)

	assert.Equal(t, Result{Converted: 1}, result)
	assert.FileExists(t, filepath.Join(fx.cfg.OutputDir, "a.md"))
}

func TestRunFailureDoesNotAbortOrUpdateHash(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "bad.pdf", "pdf-bad")
	fx.addSource(t, "good.pdf", "pdf-good")
	fx.converter.failFor["bad.pdf"] = true

	var log bytes.Buffer
	res := fx.jobs(t, false)
	result := fx.driver().Run(res.Jobs, res.Collisions, &log)

	assert.Equal(t, Result{Converted: 1, Failed: 1}, result)
	assert.Contains(t, log.String(), "failed:  bad.pdf")

	// Hash store updated only for the succeeding file.
	reloaded := hashdb.Load(fx.cfg.HashDBPath)
	goodHash, err := hashdb.FileHash(filepath.Join(fx.cfg.SourceDir, "good.pdf"))
	require.NoError(t, err)
	assert.False(t, reloaded.ShouldProcess(filepath.Join(fx.cfg.SourceDir, "good.pdf"), goodHash, false))
	badHash, err := hashdb.FileHash(filepath.Join(fx.cfg.SourceDir, "bad.pdf"))
	require.NoError(t, err)
	assert.True(t, reloaded.ShouldProcess(filepath.Join(fx.cfg.SourceDir, "bad.pdf"), badHash, false))
}

func TestRunTempPDFLifecycle(t *testing.T) {
	t.Run("removed by default", func(t *testing.T) {
		fx := setup(t)
		fx.addSource(t, "memo.docx", "docx")

		res := fx.jobs(t, false)
		fx.driver().Run(res.Jobs, nil, io.Discard)

		assert.NoFileExists(t, filepath.Join(fx.cfg.TmpPDFDir, "memo.pdf"))
		assert.NoDirExists(t, fx.cfg.TmpPDFDir)
	})

	t.Run("kept with KeepTmp", func(t *testing.T) {
		fx := setup(t)
		fx.cfg.KeepTmp = true
		fx.addSource(t, "memo.docx", "docx")

		res := fx.jobs(t, false)
		fx.driver().Run(res.Jobs, nil, io.Discard)

		assert.FileExists(t, filepath.Join(fx.cfg.TmpPDFDir, "memo.pdf"))
	})
}

func TestRunMissingOfficeSuite(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "memo.docx", "docx")
	fx.addSource(t, "plain.pdf", "pdf")

	lookupErr := errors.New("LibreOffice not found")
	d := New(fx.cfg, fx.store, fx.converter, nil, lookupErr, fx.rec)
	d.verifyPDF = func(string) (int, error) { return 1, nil }

	var log bytes.Buffer
	res := fx.jobs(t, false)
	result := d.Run(res.Jobs, nil, &log)

	// The office file fails, the native PDF still converts.
	assert.Equal(t, Result{Converted: 1, Failed: 1}, result)
	assert.Contains(t, log.String(), "LibreOffice not found")
}

func TestRunRejectsInvalidTempPDF(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "memo.docx", "docx")

	d := fx.driver()
	d.verifyPDF = func(string) (int, error) { return 0, errors.New("invalid PDF") }

	res := fx.jobs(t, false)
	result := d.Run(res.Jobs, nil, io.Discard)

	assert.Equal(t, Result{Failed: 1}, result)
	assert.Empty(t, fx.converter.calls)
}

func TestRunRecursiveMirrorsLayout(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, filepath.Join("sub", "deep", "leaf.pdf"), "pdf-leaf")
	fx.addSource(t, "top.docx", "docx-top")

	res := fx.jobs(t, true)
	result := fx.driver().Run(res.Jobs, res.Collisions, io.Discard)

	assert.Equal(t, Result{Converted: 2}, result)
	assert.FileExists(t, filepath.Join(fx.cfg.OutputDir, "sub", "deep", "leaf.md"))
	assert.FileExists(t, filepath.Join(fx.cfg.OutputDir, "top.md"))
}

func TestRunCollisionsCountAsFailures(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "report.pdf", "pdf")
	fx.addSource(t, "report.docx", "docx")

	var log bytes.Buffer
	res := fx.jobs(t, false)
	result := fx.driver().Run(res.Jobs, res.Collisions, &log)

	assert.Equal(t, 1, result.Converted+result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, log.String(), "output name collision")
}

func TestRunRecordsHistory(t *testing.T) {
	fx := setup(t)
	fx.addSource(t, "a.pdf", "pdf-a")
	fx.addSource(t, "bad.pdf", "pdf-bad")
	fx.converter.failFor["bad.pdf"] = true

	res := fx.jobs(t, false)
	fx.driver().Run(res.Jobs, nil, io.Discard)

	require.Len(t, fx.rec.entries, 2)
	byName := map[string]history.Entry{}
	for _, e := range fx.rec.entries {
		byName[filepath.Base(e.SourcePath)] = e
	}
	assert.Equal(t, types.StatusConverted, byName["a.pdf"].Status)
	assert.NotEmpty(t, byName["a.pdf"].SourceHash)
	assert.Equal(t, types.StatusFailed, byName["bad.pdf"].Status)
	assert.Equal(t, "engine crashed", byName["bad.pdf"].Error)
}
