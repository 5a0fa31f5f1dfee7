// Package specio loads interface-description artifacts from disk and
// discovers them in a workspace directory.
package specio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"specslice/internal/document"
)

// ErrNotFound marks an artifact that does not exist on disk, as opposed to
// one that exists but cannot be parsed.
var ErrNotFound = errors.New("artifact not found")

// LoadFile reads and parses a document. The extension decides nothing for
// parsing (YAML covers JSON), but a missing file is reported distinctly so
// callers can treat absence as non-fatal where policy allows.
func LoadFile(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// FindArtifact resolves a base name (no extension) to an existing file,
// preferring YAML over JSON as the original pipeline did. When neither
// exists the JSON candidate is returned so the caller's error names a
// concrete path.
func FindArtifact(dir, baseName string) string {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(dir, baseName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(dir, baseName+".json")
}

// Glob lists workspace files matching a doublestar pattern, sorted.
func Glob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := fs.Stat(os.DirFS(dir), m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, m))
	}
	sort.Strings(out)
	return out, nil
}

// IsSpecFile reports whether a path looks like a spec artifact by
// extension.
func IsSpecFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
