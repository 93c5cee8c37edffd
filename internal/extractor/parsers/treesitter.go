package parsers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// errNoTree is returned when tree-sitter produces no tree without the
// context being done.
var errNoTree = errors.New("parser returned no syntax tree")

// parseSource parses source with the given language. Parsing is abandoned
// as soon as ctx is done, so a per-file deadline bounds even pathological
// input.
func parseSource(ctx context.Context, language *sitter.Language, source []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	length := len(source)
	tree := parser.ParseWithOptions(func(i int, _ sitter.Point) []byte {
		if i < length {
			return source[i:]
		}
		return []byte{}
	}, nil, &sitter.ParseOptions{
		ProgressCallback: func(sitter.ParseState) bool {
			return ctx.Err() != nil
		},
	})
	if tree == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errNoTree
	}

	return tree, nil
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree walks a tree pre-order, depth-first, calling visitor once per
// node. Returning false from visitor skips that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil || !node.HasError() {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.IsError() || child.IsMissing() {
			return child
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	// HasError was set but no descendant carries it; report the node itself.
	return node
}

// describeErrorNode renders a short human-readable message for an error node.
func describeErrorNode(node *sitter.Node, source []byte) string {
	if node.IsMissing() {
		return fmt.Sprintf("missing %q", node.Kind())
	}

	snippet := extractNodeText(node, source)
	if idx := strings.IndexByte(snippet, '\n'); idx >= 0 {
		snippet = snippet[:idx]
	}
	snippet = strings.TrimSpace(snippet)
	if len(snippet) > 40 {
		snippet = snippet[:40] + "..."
	}
	if snippet == "" {
		return "invalid syntax"
	}
	return fmt.Sprintf("invalid syntax near %q", snippet)
}
