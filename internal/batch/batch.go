// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives a conversion run: hash-based change detection,
// office-to-PDF rendering, Markdown extraction, temp-file lifecycle,
// and per-file status reporting. Processing is strictly sequential;
// one file completes or fails before the next starts, and a per-file
// failure never aborts the batch.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/mdconvert/internal/convert"
	"github.com/pdiddy/mdconvert/internal/hashdb"
	"github.com/pdiddy/mdconvert/internal/history"
	"github.com/pdiddy/mdconvert/internal/pdfcheck"
	"github.com/pdiddy/mdconvert/pkg/types"
)

// OfficeConverter renders one office file to a PDF in outDir.
// *office.Suite implements it.
type OfficeConverter interface {
	ConvertToPDF(officePath, outDir string) (string, error)
}

// Recorder persists per-file outcomes. *history.Store implements it;
// a nil Recorder disables history.
type Recorder interface {
	Record(e history.Entry) error
}

// Result holds the outcome of a batch run.
type Result struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r Result) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Driver ties the stores and converters together for one run.
type Driver struct {
	cfg       types.ConvertConfig
	store     *hashdb.Store
	converter convert.Converter
	history   Recorder

	// office is nil when LibreOffice could not be located; officeErr
	// then carries the lookup failure reported per office file.
	office    OfficeConverter
	officeErr error

	// verifyPDF checks temp PDFs before they reach the engine.
	// Overridable in tests.
	verifyPDF func(path string) (int, error)
}

// New constructs a Driver. store and converter are required; office
// and rec may be nil (office files then fail with officeErr, history
// is not recorded).
func New(cfg types.ConvertConfig, store *hashdb.Store, converter convert.Converter, office OfficeConverter, officeErr error, rec Recorder) *Driver {
	return &Driver{
		cfg:       cfg,
		store:     store,
		converter: converter,
		history:   rec,
		office:    office,
		officeErr: officeErr,
		verifyPDF: pdfcheck.Verify,
	}
}

// Run processes every job in order, prints per-file status lines and a
// summary to w, and saves the hash store once at the end. Collision
// paths are files rejected at discovery; they count as failures.
// Per-file errors are reported and counted, never returned.
func (d *Driver) Run(jobs []types.Job, collisions []string, w io.Writer) Result {
	var result Result

	for _, p := range collisions {
		fmt.Fprintf(w, "failed:  %s (output name collision)\n", displayName(p))
		d.record(p, "", types.SourceKind("unknown"), types.StatusFailed, 0, "output name collision")
		result.Failed++
	}

	for _, job := range jobs {
		start := time.Now()
		status, hash, err := d.processJob(job, w)
		switch status {
		case types.StatusConverted:
			result.Converted++
		case types.StatusSkipped:
			result.Skipped++
		case types.StatusFailed:
			fmt.Fprintf(w, "failed:  %s (%v)\n", displayName(job.SourcePath), err)
			result.Failed++
		}
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		d.record(job.SourcePath, hash, job.Kind, status, time.Since(start), errMsg)
	}

	if err := d.store.Save(); err != nil {
		fmt.Fprintf(w, "warning: saving hash database: %v\n", err)
	}
	if !d.cfg.KeepTmp {
		pruneEmptyDirs(d.cfg.TmpPDFDir)
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// processJob runs one file through the state machine and returns its
// terminal status plus the computed source hash.
func (d *Driver) processJob(job types.Job, w io.Writer) (types.JobStatus, string, error) {
	hash, err := hashdb.FileHash(job.SourcePath)
	if err != nil {
		return types.StatusFailed, "", err
	}

	mdPath := d.outputPath(job)
	imagesDir := d.imagesDir(job)

	if !d.store.ShouldProcess(job.SourcePath, hash, d.cfg.Force) {
		// A matching hash only counts when the output actually exists;
		// a deleted Markdown file forces reconversion.
		if _, err := os.Stat(mdPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", displayName(job.SourcePath))
			return types.StatusSkipped, hash, nil
		}
	}

	pdfPath := job.SourcePath
	var tmpPDF string
	if job.Kind == types.KindOffice {
		if d.office == nil {
			return types.StatusFailed, hash, fmt.Errorf("cannot convert office file: %w", d.officeErr)
		}
		tmpDir := filepath.Join(d.cfg.TmpPDFDir, job.RelDir)
		fmt.Fprintf(w, "rendering: %s to PDF\n", displayName(job.SourcePath))
		tmpPDF, err = d.office.ConvertToPDF(job.SourcePath, tmpDir)
		if err != nil {
			return types.StatusFailed, hash, err
		}
		if _, err := d.verifyPDF(tmpPDF); err != nil {
			return types.StatusFailed, hash, err
		}
		pdfPath = tmpPDF
	}

	if err := d.converter.Convert(pdfPath, mdPath, imagesDir); err != nil {
		return types.StatusFailed, hash, err
	}

	d.store.Update(job.SourcePath, hash)
	if tmpPDF != "" && !d.cfg.KeepTmp {
		if err := os.Remove(tmpPDF); err != nil {
			fmt.Fprintf(w, "warning: removing temp PDF %s: %v\n", tmpPDF, err)
		}
	}

	fmt.Fprintf(w, "converted: %s -> %s\n", displayName(job.SourcePath), mdPath)
	return types.StatusConverted, hash, nil
}

// outputPath is <output>/<relDir>/<name>.md.
func (d *Driver) outputPath(job types.Job) string {
	base := strings.TrimSuffix(filepath.Base(job.SourcePath), filepath.Ext(job.SourcePath))
	return filepath.Join(d.cfg.OutputDir, job.RelDir, base+".md")
}

func (d *Driver) imagesDir(job types.Job) string {
	return filepath.Join(d.cfg.ImagesDir, job.RelDir)
}

func (d *Driver) record(path, hash string, kind types.SourceKind, status types.JobStatus, dur time.Duration, errMsg string) {
	if d.history == nil {
		return
	}
	backend := d.cfg.Backend
	if backend == "" {
		backend = types.BackendMinerU
	}
	err := d.history.Record(history.Entry{
		SourcePath: path,
		SourceHash: hash,
		Kind:       kind,
		Backend:    backend,
		Status:     status,
		Duration:   dur,
		Error:      errMsg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording history for %s: %v\n", path, err)
	}
}

func displayName(path string) string {
	return filepath.Base(path)
}

// pruneEmptyDirs removes empty directories bottom-up under root, then
// root itself if it emptied out. Leftover temp PDFs from failed files
// stay behind for inspection.
func pruneEmptyDirs(root string) {
	if root == "" {
		return
	}
	var dirs []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	// Deepest first.
	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err == nil && len(entries) == 0 {
			os.Remove(dirs[i])
		}
	}
}
