// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package office renders doc/docx/ppt/pptx files to PDF by driving a
// headless LibreOffice (soffice) subprocess.
package office

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const binSoffice = "soffice"

// installHint is appended to lookup errors so a missing suite is
// actionable from the batch log.
const installHint = "install LibreOffice to enable office file conversion:\n" +
	"  - Ubuntu/Debian: sudo apt-get install libreoffice\n" +
	"  - macOS: brew install libreoffice\n" +
	"  - Windows: https://www.libreoffice.org/download/download/"

// executor abstracts binary lookup and command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Glob(pattern string) ([]string, error)
	RunCombined(name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (o *osExecutor) RunCombined(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// Suite is a located LibreOffice installation.
type Suite struct {
	bin  string
	exec executor
}

// Bin returns the path of the soffice executable.
func (s *Suite) Bin() string { return s.bin }

// candidatePaths lists well-known soffice locations for the current OS.
// Patterns may contain globs.
func candidatePaths(goos string) []string {
	switch goos {
	case "windows":
		pf := os.Getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		pf86 := os.Getenv("ProgramFiles(x86)")
		if pf86 == "" {
			pf86 = `C:\Program Files (x86)`
		}
		return []string{
			filepath.Join(pf, "LibreOffice", "program", "soffice.exe"),
			filepath.Join(pf86, "LibreOffice", "program", "soffice.exe"),
		}
	case "darwin":
		return []string{
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
			"/Applications/OpenOffice.app/Contents/MacOS/soffice",
		}
	default:
		return []string{
			"/usr/bin/soffice",
			"/usr/local/bin/soffice",
			"/opt/libreoffice*/program/soffice",
		}
	}
}

// Locate finds a usable soffice binary: PATH first, then the well-known
// per-OS install locations. A miss returns an error carrying install
// instructions; the caller treats it as a per-file failure.
func Locate() (*Suite, error) {
	return locate(&osExecutor{}, runtime.GOOS)
}

func locate(exec executor, goos string) (*Suite, error) {
	if path, err := exec.LookPath(binSoffice); err == nil {
		return &Suite{bin: path, exec: exec}, nil
	}

	for _, candidate := range candidatePaths(goos) {
		if strings.Contains(candidate, "*") {
			matches, err := exec.Glob(candidate)
			if err != nil || len(matches) == 0 {
				continue
			}
			candidate = matches[0]
		}
		if _, err := os.Stat(candidate); err == nil {
			return &Suite{bin: candidate, exec: exec}, nil
		}
	}

	return nil, fmt.Errorf("LibreOffice not found; %s", installHint)
}

// ConvertToPDF renders one office file to <outDir>/<name>.pdf via
// soffice --headless and returns the produced path. A non-zero exit or
// a missing output file is an error for this file only.
func (s *Suite) ConvertToPDF(officePath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp PDF directory %s: %w", outDir, err)
	}

	out, err := s.exec.RunCombined(s.bin,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, officePath)
	if err != nil {
		return "", fmt.Errorf("soffice failed for %s: %w (output: %s)",
			officePath, err, strings.TrimSpace(out))
	}

	base := strings.TrimSuffix(filepath.Base(officePath), filepath.Ext(officePath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("soffice reported success but %s was not created (output: %s)",
			pdfPath, strings.TrimSpace(out))
	}
	return pdfPath, nil
}
