// SPDX-License-Identifier: MPL-2.0

// Package dockerfile synthesizes the build document from the resolved
// extensions and materializes the files they request into the build context.
package dockerfile

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/dockhand/internal/extension"
)

// Name is the file name of the build document inside the build context.
const Name = "Dockerfile"

// Write renders the build document for exts to w. Every preamble comes first,
// then exactly one FROM baseImage and one USER root, then every snippet, each
// fragment preceded by a comment naming its extension.
func Write(w io.Writer, exts []extension.Extension, opts extension.Options, baseImage string) error {
	ew := &errWriter{w: w}
	for _, e := range exts {
		ew.printf("# Preamble from extension [%s]\n", e.Name())
		ew.printf("%s\n", e.Preamble(opts))
	}
	ew.printf("\nFROM %s\n", baseImage)
	ew.printf("USER root\n")
	for _, e := range exts {
		ew.printf("# Snippet from extension [%s]\n", e.Name())
		ew.printf("%s\n", e.Snippet(opts))
	}
	if ew.err != nil {
		return fmt.Errorf("write build document: %w", ew.err)
	}
	return nil
}

// Generate returns the build document for exts as a string.
func Generate(exts []extension.Extension, opts extension.Options, baseImage string) string {
	var sb strings.Builder
	_ = Write(&sb, exts, opts, baseImage) // strings.Builder never fails
	return sb.String()
}

// WriteFiles writes every file requested by exts under dir and returns the
// paths written. Absolute paths and paths escaping dir are skipped with a warning.
func WriteFiles(dir string, exts []extension.Extension, opts extension.Options, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var written []string
	for _, e := range exts {
		files := e.RequestedFiles(opts)
		for _, name := range slices.Sorted(maps.Keys(files)) {
			contents := files[name]
			if filepath.IsAbs(name) {
				logger.Warn("requested path is absolute, skipping", "extension", e.Name(), "path", name)
				continue
			}
			if !filepath.IsLocal(name) {
				logger.Warn("requested path escapes the build context, skipping", "extension", e.Name(), "path", name)
				continue
			}

			full := filepath.Join(dir, name)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return written, fmt.Errorf("create directory for %s: %w", name, err)
			}
			//nolint:gosec // build context files are read by the image build
			if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
				return written, fmt.Errorf("write %s for extension [%s]: %w", name, e.Name(), err)
			}
			logger.Debug("wrote build context file", "extension", e.Name(), "path", full)
			written = append(written, full)
		}
	}
	return written, nil
}

// errWriter remembers the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
