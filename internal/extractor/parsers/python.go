package parsers

import (
	"context"
	"os"

	"github.com/mvp-joe/docgen/internal/docmodel"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ctxCheckInterval is how many nodes the walk visits between context checks.
const ctxCheckInterval = 1024

// PythonExtractor builds a FileDoc from Python source using a full
// tree-sitter syntax tree. It keeps no per-file state and is safe for
// concurrent use; every call creates its own parser.
type PythonExtractor struct {
	language *sitter.Language
}

// NewPythonExtractor creates a new Python extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{
		language: sitter.NewLanguage(python.Language()),
	}
}

// ExtractFile reads filePath whole and extracts it.
func (p *PythonExtractor) ExtractFile(ctx context.Context, filePath string) (*docmodel.FileDoc, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, filePath, source)
}

// Extract parses source once and collects the module docstring, imports,
// classes and functions in a single pre-order walk. Source that does not
// parse cleanly yields a *docmodel.ParseError.
func (p *PythonExtractor) Extract(ctx context.Context, filename string, source []byte) (*docmodel.FileDoc, error) {
	tree, err := parseSource(ctx, p.language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, newParseError(filename, root, source)
	}

	doc := docmodel.NewFileDoc(filename)
	if value, ok := leadingDocstring(root, source); ok {
		doc.ModuleDocstring = &value
	}

	var walkErr error
	visited := 0
	walkTree(root, func(n *sitter.Node) bool {
		if walkErr != nil {
			return false
		}
		visited++
		if visited%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				walkErr = err
				return false
			}
		}

		switch n.Kind() {
		case "import_statement":
			doc.Imports = append(doc.Imports, p.directImports(n, source)...)
		case "import_from_statement", "future_import_statement":
			doc.Imports = append(doc.Imports, p.fromImports(n, source)...)
		case "class_definition":
			doc.Classes = append(doc.Classes, p.class(n, source))
		case "function_definition":
			doc.Functions = append(doc.Functions, p.function(n, source))
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return doc, nil
}

// directImports handles "import a.b as c, d". Module is always empty.
func (p *PythonExtractor) directImports(node *sitter.Node, source []byte) []docmodel.ImportRecord {
	cursor := node.Walk()
	defer cursor.Close()

	var records []docmodel.ImportRecord
	for _, nameNode := range node.ChildrenByFieldName("name", cursor) {
		name, alias := importedName(&nameNode, source)
		records = append(records, docmodel.ImportRecord{
			Module: []string{},
			Name:   name,
			Alias:  alias,
		})
	}
	return records
}

// fromImports handles "from X import a as b, c", relative and wildcard
// forms, and "from __future__ import x".
func (p *PythonExtractor) fromImports(node *sitter.Node, source []byte) []docmodel.ImportRecord {
	var module []string
	if node.Kind() == "future_import_statement" {
		module = []string{"__future__"}
	} else {
		module = moduleSegments(node.ChildByFieldName("module_name"), source)
	}

	cursor := node.Walk()
	defer cursor.Close()

	var records []docmodel.ImportRecord
	for _, nameNode := range node.ChildrenByFieldName("name", cursor) {
		name, alias := importedName(&nameNode, source)
		records = append(records, docmodel.ImportRecord{
			Module: append([]string{}, module...),
			Name:   name,
			Alias:  alias,
		})
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		if node.NamedChild(i).Kind() == "wildcard_import" {
			records = append(records, docmodel.ImportRecord{
				Module: append([]string{}, module...),
				Name:   []string{"*"},
			})
		}
	}

	return records
}

// importedName splits a dotted_name or aliased_import into segments and alias.
func importedName(node *sitter.Node, source []byte) ([]string, *string) {
	if node.Kind() == "aliased_import" {
		name := dottedSegments(node.ChildByFieldName("name"), source)
		if aliasNode := node.ChildByFieldName("alias"); aliasNode != nil {
			alias := extractNodeText(aliasNode, source)
			return name, &alias
		}
		return name, nil
	}
	return dottedSegments(node, source), nil
}

// moduleSegments returns the segments of a from-import module. A relative
// import keeps its dot prefix as the first segment.
func moduleSegments(node *sitter.Node, source []byte) []string {
	if node == nil {
		return []string{}
	}
	if node.Kind() != "relative_import" {
		return dottedSegments(node, source)
	}

	segments := []string{}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "import_prefix":
			segments = append(segments, extractNodeText(child, source))
		case "dotted_name":
			segments = append(segments, dottedSegments(child, source)...)
		}
	}
	return segments
}

// dottedSegments returns the identifiers of a dotted_name.
func dottedSegments(node *sitter.Node, source []byte) []string {
	segments := []string{}
	if node == nil {
		return segments
	}
	if node.Kind() == "identifier" {
		return append(segments, extractNodeText(node, source))
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "identifier" {
			segments = append(segments, extractNodeText(child, source))
		}
	}
	return segments
}

// class builds a ClassRecord.
func (p *PythonExtractor) class(node *sitter.Node, source []byte) docmodel.ClassRecord {
	return docmodel.ClassRecord{
		Name:      extractNodeText(node.ChildByFieldName("name"), source),
		Docstring: docstringOrDefault(node.ChildByFieldName("body"), source),
	}
}

// function builds a FunctionRecord.
func (p *PythonExtractor) function(node *sitter.Node, source []byte) docmodel.FunctionRecord {
	return docmodel.FunctionRecord{
		Name:      extractNodeText(node.ChildByFieldName("name"), source),
		Docstring: docstringOrDefault(node.ChildByFieldName("body"), source),
		Args:      positionalArgs(node.ChildByFieldName("parameters"), source),
	}
}

// positionalArgs lists the names of the parameters that can be passed
// positionally. Everything after *args or a bare * is keyword-only and
// **kwargs is never positional.
func positionalArgs(params *sitter.Node, source []byte) []string {
	args := []string{}
	if params == nil {
		return args
	}

	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		switch param.Kind() {
		case "identifier":
			args = append(args, extractNodeText(param, source))
		case "default_parameter", "typed_default_parameter":
			if name := param.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				args = append(args, extractNodeText(name, source))
			}
		case "typed_parameter":
			inner := typedParameterTarget(param)
			if inner == nil {
				continue
			}
			switch inner.Kind() {
			case "identifier":
				args = append(args, extractNodeText(inner, source))
			case "list_splat_pattern":
				return args
			}
		case "list_splat_pattern", "keyword_separator":
			return args
		}
	}
	return args
}

// typedParameterTarget returns the parameter node wrapped by a typed_parameter.
func typedParameterTarget(param *sitter.Node) *sitter.Node {
	for i := uint(0); i < param.NamedChildCount(); i++ {
		if param.FieldNameForNamedChild(uint32(i)) == "type" {
			continue
		}
		return param.NamedChild(i)
	}
	return nil
}

// docstringOrDefault returns the block's leading string or the sentinel.
func docstringOrDefault(body *sitter.Node, source []byte) string {
	if value, ok := leadingDocstring(body, source); ok {
		return value
	}
	return docmodel.DocstringNotDefined
}

// leadingDocstring returns the value of the first statement of a module or
// block when that statement is a bare string expression.
func leadingDocstring(block *sitter.Node, source []byte) (string, bool) {
	if block == nil {
		return "", false
	}

	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return "", false
		}
		return stringLiteralValue(stmt.NamedChild(0), source)
	}
	return "", false
}

// newParseError locates the first syntax error under root.
func newParseError(filename string, root *sitter.Node, source []byte) *docmodel.ParseError {
	node := firstErrorNode(root)
	if node == nil {
		return &docmodel.ParseError{Filename: filename, Message: "invalid syntax"}
	}

	pos := node.StartPosition()
	return &docmodel.ParseError{
		Filename: filename,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
		Message:  describeErrorNode(node, source),
	}
}
