// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfcheck performs a sanity pass over PDFs before they reach
// the parsing engine, catching truncated or corrupt files early with
// a clear error instead of an opaque engine failure.
package pdfcheck

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Verify validates the PDF at path and returns its page count.
// Validation is relaxed: LibreOffice output is not always strictly
// conformant but parses fine downstream.
func Verify(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("invalid PDF %s: %w", path, err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("PDF %s has no pages", path)
	}
	return pages, nil
}
