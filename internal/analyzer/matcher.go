package analyzer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnore lists directory names that are never descended into.
var DefaultIgnore = []string{"node_modules", ".git", "dist", "build", "target"}

// DefaultMaxDepth bounds how many directory levels below the root are scanned.
const DefaultMaxDepth = 5

// Manifest is a file whose name matched a schema trigger pattern.
type Manifest struct {
	Dir  string
	Path string
}

// Name returns the manifest's base name.
func (m Manifest) Name() string {
	return filepath.Base(m.Path)
}

// Matcher locates manifest files under a root directory.
type Matcher struct {
	MaxDepth int
	Ignore   []string
}

// DefaultMatcher returns a matcher with the default depth and ignore list.
func DefaultMatcher() Matcher {
	return Matcher{MaxDepth: DefaultMaxDepth, Ignore: DefaultIgnore}
}

// Index holds every manifest found by one walk of a root directory.
type Index struct {
	files []Manifest
}

// Scan walks root once and records every file whose base name matches one of
// patterns (filepath.Match syntax). Hidden and ignored directories are skipped.
// Unreadable subdirectories are skipped; only an unreadable root is an error.
func (m Matcher) Scan(ctx context.Context, root string, patterns []string) (*Index, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Err: fs.ErrInvalid}
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	idx := &Index{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if m.ignored(d.Name()) || depth(root, path) > m.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if matchAny(patterns, d.Name()) {
			idx.files = append(idx.files, Manifest{Dir: filepath.Dir(path), Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (m Matcher) ignored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ig := range m.Ignore {
		if name == ig {
			return true
		}
	}
	return false
}

// depth counts directory levels of path below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Find returns the first manifest per directory for the given patterns.
// Patterns are tried in order, so an earlier pattern claims a directory before
// a later one; within a pattern, discovery order is kept.
func (idx *Index) Find(patterns []string) []Manifest {
	seen := make(map[string]bool)
	var out []Manifest
	for _, p := range patterns {
		for _, f := range idx.files {
			if seen[f.Dir] {
				continue
			}
			if ok, _ := filepath.Match(p, f.Name()); ok {
				seen[f.Dir] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Len returns the number of manifests in the index.
func (idx *Index) Len() int {
	return len(idx.files)
}
