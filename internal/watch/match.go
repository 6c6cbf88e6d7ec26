package watch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// ignoredDirs are never descended into.
var ignoredDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".idea":        true,
	"node_modules": true,
}

// Matcher selects smali files by a glob over slash-separated paths relative
// to the directory being scanned.
type Matcher struct {
	pattern string
	g       glob.Glob
}

// NewMatcher compiles pattern, e.g. "**.smali" or "{**/smali/**,**/smali_classes*/**}.smali".
func NewMatcher(pattern string) (*Matcher, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
	}
	return &Matcher{pattern: pattern, g: g}, nil
}

// Pattern returns the source pattern.
func (m *Matcher) Pattern() string { return m.pattern }

// Match reports whether rel (relative to the scanned root) is included.
func (m *Matcher) Match(rel string) bool {
	return m.g.Match(filepath.ToSlash(rel))
}

// MatchUnder reports whether path, which lies under root, is included.
func (m *Matcher) MatchUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return m.Match(rel)
}

// Expand walks root on fsys and returns every included regular file in
// lexical order.
func (m *Matcher) Expand(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && ignoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() && m.MatchUnder(root, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
