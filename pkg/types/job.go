// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceKind classifies a discovered file. The kind is resolved once at
// discovery time; office files take an extra PDF-rendering step before
// Markdown extraction.
type SourceKind string

const (
	KindPDF    SourceKind = "pdf"
	KindOffice SourceKind = "office"
)

// JobStatus is the terminal state of one file in a batch run.
type JobStatus string

const (
	StatusConverted JobStatus = "converted"
	StatusSkipped   JobStatus = "skipped"
	StatusFailed    JobStatus = "failed"
)

// Job describes one discovered source file and where its outputs go.
// Jobs are created per run and never persisted.
type Job struct {
	// SourcePath is the absolute path of the discovered file.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// RelDir is the file's directory relative to the source root
	// ("." for direct children). In recursive mode the output, image,
	// and temp-PDF trees mirror it.
	RelDir string `json:"rel_dir" yaml:"rel_dir"`

	// Kind routes the file to its handler.
	Kind SourceKind `json:"kind" yaml:"kind"`
}
