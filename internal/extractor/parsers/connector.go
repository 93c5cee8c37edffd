package parsers

import (
	"context"
	"os"
	"strings"

	"github.com/mvp-joe/docgen/internal/docmodel"
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// Keys of a connector literal, in the order they must appear.
const (
	keyTitle             = "title"
	keyConnection        = "connection"
	keyActions           = "actions"
	keyTriggers          = "triggers"
	keyMethods           = "methods"
	keyObjectDefinitions = "object_definitions"
	keyPickLists         = "pick_lists"
)

// maskedKinds are Ruby nodes whose text can contain braces or key-like
// words that are not part of the literal's structure.
var maskedKinds = map[string]bool{
	"comment":          true,
	"string":           true,
	"heredoc_body":     true,
	"regex":            true,
	"subshell":         true,
	"string_array":     true,
	"symbol_array":     true,
	"delimited_symbol": true,
	"simple_symbol":    true,
	"character":        true,
	"uninterpreted":    true,
}

// ConnectorExtractor recognizes Ruby connector files: a hash literal whose
// direct entries include title, connection, actions, triggers, methods,
// object_definitions and pick_lists, in that order. Spans are found by
// bracket-depth scanning; tree-sitter-ruby is only used to mask comments
// and literals so braces inside them are not counted.
type ConnectorExtractor struct {
	language *sitter.Language
}

// NewConnectorExtractor creates a new connector extractor.
func NewConnectorExtractor() *ConnectorExtractor {
	return &ConnectorExtractor{
		language: sitter.NewLanguage(ruby.Language()),
	}
}

// ExtractFile reads filePath whole and extracts it.
func (c *ConnectorExtractor) ExtractFile(ctx context.Context, filePath string) (*docmodel.ConnectorDoc, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return c.Extract(ctx, filePath, source)
}

// Extract returns the ConnectorDoc for source, or nil when source does not
// have the connector shape. A non-match is never an error; errors only
// come from a cancelled context.
func (c *ConnectorExtractor) Extract(ctx context.Context, filename string, source []byte) (*docmodel.ConnectorDoc, error) {
	mask, err := c.lexicalMask(ctx, source)
	if err != nil {
		return nil, err
	}

	s := &braceScanner{src: source, mask: mask}

	titleStart, titleValue, ok := s.findKey(keyTitle, false)
	if !ok {
		return nil, nil
	}
	titleEnd, ok := s.quotedString(titleValue)
	if !ok {
		return nil, nil
	}
	s.advance(titleEnd)
	title := string(source[titleStart:titleEnd])

	if _, _, ok := s.findKey(keyConnection, true); !ok {
		return nil, nil
	}

	spans := make(map[string]string, 3)
	for _, key := range []string{keyActions, keyTriggers, keyMethods} {
		_, valueStart, ok := s.findKey(key, true)
		if !ok {
			return nil, nil
		}
		open, ok := s.skipSpace(valueStart)
		if !ok || source[open] != '{' || s.masked(open) {
			return nil, nil
		}
		end, ok := s.matchBrace(open)
		if !ok {
			return nil, nil
		}
		spans[key] = string(source[open:end])
		s.advance(end)
	}

	for _, key := range []string{keyObjectDefinitions, keyPickLists} {
		if _, _, ok := s.findKey(key, true); !ok {
			return nil, nil
		}
	}

	return &docmodel.ConnectorDoc{
		Filename:      filename,
		ConnectorName: connectorName(title),
		Title:         title,
		Actions:       spans[keyActions],
		Triggers:      spans[keyTriggers],
		Methods:       spans[keyMethods],
	}, nil
}

// lexicalMask marks every byte covered by a comment or literal node.
func (c *ConnectorExtractor) lexicalMask(ctx context.Context, source []byte) ([]bool, error) {
	tree, err := parseSource(ctx, c.language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	mask := make([]bool, len(source))
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if !maskedKinds[n.Kind()] {
			return true
		}
		start, end := n.StartByte(), n.EndByte()
		if end > uint(len(mask)) {
			end = uint(len(mask))
		}
		for i := start; i < end; i++ {
			mask[i] = true
		}
		return false
	})

	return mask, ctx.Err()
}

// connectorName derives the display name from a captured "title: ..."
// entry: the text after the first colon, trimmed, without its quotes.
func connectorName(title string) string {
	_, rest, found := strings.Cut(title, ":")
	if !found {
		rest = title
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 {
		first, last := rest[0], rest[len(rest)-1]
		if (first == '"' || first == '\'') && first == last {
			rest = rest[1 : len(rest)-1]
		}
	}
	return rest
}

// braceScanner walks a Ruby source forward, tracking unmasked brace depth.
type braceScanner struct {
	src   []byte
	mask  []bool
	pos   int
	depth int
}

func (s *braceScanner) masked(i int) bool {
	return i < len(s.mask) && s.mask[i]
}

// advance moves the cursor to pos. The caller guarantees that the skipped
// range is brace-balanced.
func (s *braceScanner) advance(pos int) {
	s.pos = pos
}

// findKey scans forward for "key:" written as a direct entry of the outer
// literal (depth 1). It returns the key offset and the offset just past the
// colon. With within set, the search fails once the outer literal closes;
// otherwise a closed hash simply resets the search.
func (s *braceScanner) findKey(key string, within bool) (int, int, bool) {
	for ; s.pos < len(s.src); s.pos++ {
		i := s.pos
		if s.masked(i) {
			continue
		}

		switch s.src[i] {
		case '{':
			s.depth++
			continue
		case '}':
			s.depth--
			if s.depth <= 0 {
				if within {
					return 0, 0, false
				}
				s.depth = 0
			}
			continue
		}

		if s.depth == 1 && s.isKeyAt(i, key) {
			s.pos = i + len(key) + 1
			return i, s.pos, true
		}
	}
	return 0, 0, false
}

// isKeyAt reports whether "key:" starts at i as a whole word.
func (s *braceScanner) isKeyAt(i int, key string) bool {
	end := i + len(key)
	if end >= len(s.src) || string(s.src[i:end]) != key || s.src[end] != ':' {
		return false
	}
	if end+1 < len(s.src) && s.src[end+1] == ':' {
		return false
	}
	if i > 0 && isIdentByte(s.src[i-1]) {
		return false
	}
	return true
}

// skipSpace returns the first non-whitespace offset at or after i.
func (s *braceScanner) skipSpace(i int) (int, bool) {
	for ; i < len(s.src); i++ {
		switch s.src[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return i, true
	}
	return 0, false
}

// quotedString returns the offset just past a single- or double-quoted
// string starting (after whitespace) at i.
func (s *braceScanner) quotedString(i int) (int, bool) {
	start, ok := s.skipSpace(i)
	if !ok {
		return 0, false
	}
	quote := s.src[start]
	if quote != '"' && quote != '\'' {
		return 0, false
	}
	for j := start + 1; j < len(s.src); j++ {
		switch s.src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		}
	}
	return 0, false
}

// matchBrace returns the offset just past the brace closing the one at open.
func (s *braceScanner) matchBrace(open int) (int, bool) {
	depth := 0
	for i := open; i < len(s.src); i++ {
		if s.masked(i) {
			continue
		}
		switch s.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
