package parsers

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// stringLiteralValue returns the value of a plain (non-f, non-bytes) string
// literal or an implicit concatenation of them.
func stringLiteralValue(node *sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "string":
		return decodeStringNode(node, source)
	case "concatenated_string":
		var sb strings.Builder
		for i := uint(0); i < node.NamedChildCount(); i++ {
			part := node.NamedChild(i)
			if part.Kind() == "comment" {
				continue
			}
			value, ok := stringLiteralValue(part, source)
			if !ok {
				return "", false
			}
			sb.WriteString(value)
		}
		return sb.String(), true
	}
	return "", false
}

// decodeStringNode strips the prefix and quotes of a string node and
// decodes its escape sequences.
func decodeStringNode(node *sitter.Node, source []byte) (string, bool) {
	var start, end *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_start":
			start = child
		case "string_end":
			end = child
		}
	}
	if start == nil || end == nil || end.StartByte() < start.EndByte() {
		return "", false
	}

	prefix := strings.ToLower(strings.TrimRight(extractNodeText(start, source), `'"`))
	if strings.ContainsAny(prefix, "fb") {
		return "", false
	}

	body := string(source[start.EndByte():end.StartByte()])
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if strings.Contains(prefix, "r") {
		return body, true
	}
	return unescapePython(body), true
}

// unescapePython decodes the backslash escapes of a Python str literal.
// Unknown escapes are kept verbatim, as Python does.
func unescapePython(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}

		next := s[i+1]
		switch next {
		case '\n':
			// line continuation
		case '\\', '\'', '"':
			sb.WriteByte(next)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case 'x':
			if r, ok := parseHexRune(s, i+2, 2); ok {
				sb.WriteRune(r)
				i += 3
				continue
			}
			sb.WriteString(`\x`)
		case 'u':
			if r, ok := parseHexRune(s, i+2, 4); ok {
				sb.WriteRune(r)
				i += 5
				continue
			}
			sb.WriteString(`\u`)
		case 'U':
			if r, ok := parseHexRune(s, i+2, 8); ok {
				sb.WriteRune(r)
				i += 9
				continue
			}
			sb.WriteString(`\U`)
		default:
			if next >= '0' && next <= '7' {
				n := 1
				for n < 3 && i+1+n < len(s) && s[i+1+n] >= '0' && s[i+1+n] <= '7' {
					n++
				}
				v, _ := strconv.ParseUint(s[i+1:i+1+n], 8, 32)
				sb.WriteRune(rune(v))
				i += n
				continue
			}
			sb.WriteByte('\\')
			sb.WriteByte(next)
		}
		i++
	}

	return sb.String()
}

// parseHexRune reads width hex digits of s starting at from.
func parseHexRune(s string, from, width int) (rune, bool) {
	if from+width > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[from:from+width], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
