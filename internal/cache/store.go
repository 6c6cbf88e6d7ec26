// Package cache manages the tree of decompiled files under the output root.
//
// The tree is the only state smali2java keeps between runs. Entries are
// never expired automatically; Clear removes everything and the next
// decompile recreates what it needs.
package cache

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/output"
	"github.com/Iron-Ham/smali2java/internal/smali"
)

// Entry is one decompiled file.
type Entry struct {
	ClassName smali.ClassName `json:"class"`
	RealPath  string          `json:"path"`
	Size      int64           `json:"size"`
	ModTime   time.Time       `json:"mod_time"`
}

// Stats summarizes the tree.
type Stats struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"total_bytes"`
}

// Store reads and clears the output tree rooted at one directory.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore returns a Store over root on fs. A nil fs uses the OS filesystem.
func NewStore(fs afero.Fs, root string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Store{fs: fs, root: root}
}

// Root returns the absolute output root.
func (s *Store) Root() string { return s.root }

// Clear deletes the whole output tree. A missing root is not an error.
func (s *Store) Clear() error {
	if err := s.fs.RemoveAll(s.root); err != nil {
		return fmt.Errorf("clear cache %s: %w", s.root, err)
	}
	return nil
}

// Entries lists every decompiled file, sorted by class name. Files whose
// relative path does not form a valid class name are skipped.
func (s *Store) Entries() ([]Entry, error) {
	if ok, err := afero.DirExists(s.fs, s.root); err != nil || !ok {
		// Nothing decompiled yet, or the cache was just cleared.
		return nil, nil
	}

	var entries []Entry
	err := afero.Walk(s.fs, s.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		class, ok := s.classFor(path)
		if !ok {
			return nil
		}
		entries = append(entries, Entry{
			ClassName: class,
			RealPath:  path,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cache %s: %w", s.root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ClassName < entries[j].ClassName
	})
	return entries, nil
}

// classFor maps a file under the root back to its class name. The reserved
// default-package directory maps to an unpackaged name.
func (s *Store) classFor(path string) (smali.ClassName, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if ext := filepath.Ext(rel); ext != "" {
		rel = strings.TrimSuffix(rel, ext)
	}
	if rest, ok := strings.CutPrefix(rel, output.DefaultPackageDir+"/"); ok && !strings.Contains(rest, "/") {
		rel = rest
	}

	class := smali.ClassName(rel)
	if class.Validate() != nil {
		return "", false
	}
	return class, true
}

// Stats walks the tree and totals its files.
func (s *Store) Stats() (Stats, error) {
	entries, err := s.Entries()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Entries: len(entries)}
	for _, e := range entries {
		st.TotalBytes += e.Size
	}
	return st, nil
}

// Open streams the file a virtual identifier points at. Identifiers whose
// real path lies outside the output root are refused.
func (s *Store) Open(id output.VirtualID) (io.ReadCloser, error) {
	if id.Scheme != output.Scheme {
		return nil, fmt.Errorf("open %s: unsupported scheme %q", id, id.Scheme)
	}

	path := filepath.Clean(id.RealPath)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("open %s: path is outside the output root %s", id, s.root)
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	return f, nil
}

// OpenString parses a rendered identifier and opens it.
func (s *Store) OpenString(raw string) (io.ReadCloser, error) {
	id, err := output.ParseVirtualID(raw)
	if err != nil {
		return nil, err
	}
	return s.Open(id)
}
