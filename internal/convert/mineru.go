// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultMinerUBin is the MinerU CLI binary name looked up on PATH.
const DefaultMinerUBin = "mineru"

// executor abstracts binary lookup and command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunCombined(name string, args ...string) (string, error)
}

type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunCombined(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// MinerUConverter runs the MinerU parsing engine as a subprocess. The
// engine writes Markdown and extracted images into a scratch directory
// of its own layout; the converter relocates them to the requested
// output paths.
type MinerUConverter struct {
	bin  string
	exec executor
}

// NewMinerUConverter resolves the MinerU binary (bin, or
// DefaultMinerUBin when empty) and fails if it is not installed.
// A missing engine is fatal for the whole run: without it no PDF can
// be converted.
func NewMinerUConverter(bin string) (*MinerUConverter, error) {
	return newMinerUConverter(bin, &osExecutor{})
}

func newMinerUConverter(bin string, e executor) (*MinerUConverter, error) {
	if bin == "" {
		bin = DefaultMinerUBin
	}
	path, err := e.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("MinerU CLI %q not found on PATH (pip install mineru): %w", bin, err)
	}
	return &MinerUConverter{bin: path, exec: e}, nil
}

// Convert runs the engine against pdfPath, writing the Markdown to
// mdPath and moving extracted images into imagesDir.
func (m *MinerUConverter) Convert(pdfPath, mdPath, imagesDir string) error {
	if err := prepareOutputs(mdPath, imagesDir); err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "mdconvert-mineru-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	out, err := m.exec.RunCombined(m.bin, "-p", pdfPath, "-o", scratch)
	if err != nil {
		return fmt.Errorf("mineru failed for %s: %w (output: %s)",
			pdfPath, err, strings.TrimSpace(out))
	}

	produced, err := findMarkdown(scratch)
	if err != nil {
		return fmt.Errorf("locating engine output for %s: %w", pdfPath, err)
	}
	if err := copyFile(produced, mdPath); err != nil {
		return fmt.Errorf("writing %s: %w", mdPath, err)
	}
	if err := collectImages(scratch, imagesDir); err != nil {
		return fmt.Errorf("collecting images for %s: %w", pdfPath, err)
	}
	return nil
}

// findMarkdown returns the first .md file in the engine's scratch tree.
// The engine nests output under <name>/<mode>/, so a walk is simpler
// than hard-coding its layout.
func findMarkdown(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no Markdown produced under %s", root)
	}
	return found, nil
}

// collectImages copies every file under any "images" directory in the
// scratch tree into imagesDir, flattening by base name.
func collectImages(root, imagesDir string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != "images" {
			return nil
		}
		return copyFile(path, filepath.Join(imagesDir, filepath.Base(path)))
	})
}
