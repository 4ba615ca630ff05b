// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover lists convertible files under a source directory and
// resolves each one to a tagged kind (PDF or office) exactly once, so
// the batch driver never re-inspects extensions.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/mdconvert/pkg/types"
)

// kindByExt maps recognized lowercase extensions to their kind.
var kindByExt = map[string]types.SourceKind{
	".pdf":  types.KindPDF,
	".doc":  types.KindOffice,
	".docx": types.KindOffice,
	".ppt":  types.KindOffice,
	".pptx": types.KindOffice,
}

// Result holds the discovered jobs plus any files rejected up front.
type Result struct {
	Jobs []types.Job

	// Collisions lists files whose Markdown output path is already
	// claimed by an earlier job. They are reported as failures rather
	// than silently overwriting the earlier output.
	Collisions []string
}

// Classify resolves a single path to its kind. Unknown extensions
// return an error naming the supported set.
func Classify(path string) (types.SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := kindByExt[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q: supported types are .pdf, .doc, .docx, .ppt, .pptx", ext)
	}
	return kind, nil
}

// Discover lists convertible files under sourceDir. Non-recursive mode
// considers direct children only; recursive mode walks the whole tree,
// recording each job's directory relative to sourceDir so output trees
// can mirror the source layout. Jobs come back in lexicographic path
// order. Extension matching is case-insensitive.
func Discover(sourceDir string, recursive bool) (Result, error) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return Result{}, fmt.Errorf("resolving source directory %s: %w", sourceDir, err)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(absSource, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := kindByExt[strings.ToLower(filepath.Ext(path))]; ok {
				paths = append(paths, path)
			}
			return nil
		})
	} else {
		var entries []os.DirEntry
		entries, err = os.ReadDir(absSource)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				name := e.Name()
				if _, ok := kindByExt[strings.ToLower(filepath.Ext(name))]; ok {
					paths = append(paths, filepath.Join(absSource, name))
				}
			}
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("scanning source directory %s: %w", sourceDir, err)
	}
	sort.Strings(paths)

	var res Result
	claimed := make(map[string]string) // markdown output key -> claiming source
	for _, p := range paths {
		kind, err := Classify(p)
		if err != nil {
			continue
		}
		relDir, err := filepath.Rel(absSource, filepath.Dir(p))
		if err != nil {
			relDir = "."
		}

		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		key := filepath.Join(relDir, base+".md")
		if prev, taken := claimed[key]; taken {
			fmt.Fprintf(os.Stderr, "warning: %s would overwrite output of %s\n", p, prev)
			res.Collisions = append(res.Collisions, p)
			continue
		}
		claimed[key] = p

		res.Jobs = append(res.Jobs, types.Job{
			SourcePath: p,
			RelDir:     relDir,
			Kind:       kind,
		})
	}
	return res, nil
}
