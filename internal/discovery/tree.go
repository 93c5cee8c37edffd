package discovery

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/docgen/internal/docmodel"
)

// SourceTree is one scanned directory. Children are owned by value and
// nothing points back at a parent, so a tree is immutable once Scan returns.
type SourceTree struct {
	Path     string             // absolute directory path
	Files    []string           // matched files directly in this directory, in listing order
	Children []SourceTree       // subdirectories, in listing order
	Skipped  []docmodel.Failure // subdirectories that could not be read
}

// HasMatches reports whether node or any descendant holds a matched file.
func HasMatches(node *SourceTree) bool {
	if node == nil {
		return false
	}
	if len(node.Files) > 0 {
		return true
	}
	for i := range node.Children {
		if HasMatches(&node.Children[i]) {
			return true
		}
	}
	return false
}

// Flatten returns every matched file with the given extension, depth-first:
// the directory's own files first, then each child's in listing order.
func Flatten(node *SourceTree, ext string) []string {
	paths := []string{}
	if node == nil {
		return paths
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return flattenInto(paths, node, ext)
}

func flattenInto(paths []string, node *SourceTree, ext string) []string {
	for _, file := range node.Files {
		if filepath.Ext(file) == ext {
			paths = append(paths, file)
		}
	}
	for i := range node.Children {
		paths = flattenInto(paths, &node.Children[i], ext)
	}
	return paths
}

// Failures collects every skipped directory in the tree, depth-first.
func (t *SourceTree) Failures() []docmodel.Failure {
	failures := []docmodel.Failure{}
	var collect func(node *SourceTree)
	collect = func(node *SourceTree) {
		failures = append(failures, node.Skipped...)
		for i := range node.Children {
			collect(&node.Children[i])
		}
	}
	collect(t)
	return failures
}

// Count returns the number of matched files with the given extension.
func (t *SourceTree) Count(ext string) int {
	return len(Flatten(t, ext))
}
