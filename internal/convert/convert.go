// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-Markdown conversion with pluggable
// backends. The MinerU backend shells out to the external parsing
// engine and relocates its outputs; the markitdown backend pipes
// documents through a container image. Both treat the engine's
// OCR-versus-text decision as opaque.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Converter transforms one PDF into Markdown written to mdPath, with
// any extracted images placed under imagesDir. Backends that cannot
// extract images simply leave imagesDir untouched.
type Converter interface {
	Convert(pdfPath, mdPath, imagesDir string) error
}

// prepareOutputs creates the Markdown and image directories for a job.
func prepareOutputs(mdPath, imagesDir string) error {
	for _, dir := range []string{filepath.Dir(mdPath), imagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	return nil
}

// copyFile copies src to dst, creating dst's directory.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
