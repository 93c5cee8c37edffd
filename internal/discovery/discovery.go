package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/docgen/internal/docmodel"
)

// matchPatterns are the file name globs a scan collects.
var matchPatterns = []string{"*" + docmodel.PythonExt, "*" + docmodel.RubyExt}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Scanner builds SourceTrees. The zero configuration recurses into every
// subdirectory; ignore patterns are matched against slash-separated paths
// relative to the scan root.
type Scanner struct {
	matchPatterns  []compiledPattern
	ignorePatterns []compiledPattern
}

// NewScanner creates a scanner with optional ignore globs (e.g. "venv/**").
func NewScanner(ignorePatterns []string) (*Scanner, error) {
	s := &Scanner{}

	for _, pattern := range matchPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		s.matchPatterns = append(s.matchPatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		s.ignorePatterns = append(s.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return s, nil
}

// Scan builds a SourceTree for root using a scanner without ignore rules.
func Scan(root string) (*SourceTree, error) {
	s, err := NewScanner(nil)
	if err != nil {
		return nil, err
	}
	return s.Scan(root)
}

// Scan walks root recursively. A missing, unreadable or non-directory root
// fails the whole scan; unreadable subdirectories are recorded on their
// parent's Skipped list and the walk continues.
func (s *Scanner) Scan(root string) (*SourceTree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, classify(absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", docmodel.ErrNotDirectory, absRoot)
	}

	tree, err := s.build(absRoot, absRoot)
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// build reads one directory and recurses into its subdirectories in
// listing order.
func (s *Scanner) build(root, dir string) (SourceTree, error) {
	node := SourceTree{
		Path:     dir,
		Files:    []string{},
		Children: []SourceTree{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return node, classify(dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if s.ShouldIgnore(root, path) {
			continue
		}

		if entry.IsDir() {
			child, err := s.build(root, path)
			if err != nil {
				log.Printf("Warning: skipping unreadable directory %s: %v", path, err)
				node.Skipped = append(node.Skipped, docmodel.FailureFromError(path, err))
				continue
			}
			node.Children = append(node.Children, child)
			continue
		}

		if s.Matches(entry.Name()) {
			node.Files = append(node.Files, path)
		}
	}

	return node, nil
}

// Matches reports whether a file name carries a recognized extension.
func (s *Scanner) Matches(name string) bool {
	for _, cp := range s.matchPatterns {
		if cp.glob.Match(name) {
			return true
		}
	}
	return false
}

// ShouldIgnore checks path against the configured ignore patterns.
func (s *Scanner) ShouldIgnore(root, path string) bool {
	if len(s.ignorePatterns) == 0 {
		return false
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, cp := range s.ignorePatterns {
		// "node_modules/**" should also exclude the node_modules directory itself
		if cp.glob.Match(relPath) || cp.glob.Match(relPath+"/**") {
			return true
		}
		// Root-level entries also match "**/" patterns without the prefix.
		if !strings.Contains(relPath, "/") && strings.HasPrefix(cp.pattern, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(relPath) {
				return true
			}
		}
	}
	return false
}

// classify wraps a filesystem error in the discovery error taxonomy.
func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", docmodel.ErrPathNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", docmodel.ErrPermissionDenied, path)
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
}
