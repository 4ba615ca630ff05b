// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdiddy/mdconvert/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts PDFs by piping them through the
// markitdown container image on a docker or podman runtime. It emits
// Markdown only; image extraction needs the MinerU backend.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter verifies that the markitdown image exists on
// the given runtime before returning a converter.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.HasImage(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert pipes the PDF through the container and writes the resulting
// Markdown to mdPath. imagesDir is created but left empty.
func (m *MarkitdownConverter) Convert(pdfPath, mdPath, imagesDir string) error {
	if err := prepareOutputs(mdPath, imagesDir); err != nil {
		return err
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Pipe(imageMarkitdown, f, &out); err != nil {
		return fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return fmt.Errorf("markitdown produced empty output for %s", pdfPath)
	}

	if err := os.WriteFile(mdPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mdPath, err)
	}
	return nil
}
