package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Python string decoding:
// - Simple escapes, hex, unicode and octal escapes decode
// - Unknown escapes and truncated escapes are kept verbatim
// - Line continuations are removed
// - Docstring literals with prefixes decode through the extractor

func TestUnescapePython(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected string
	}{
		{`plain`, "plain"},
		{`tab\there`, "tab\there"},
		{`quote\'s and \"double\"`, `quote's and "double"`},
		{`back\\slash`, `back\slash`},
		{`\x41é\U0001F600`, "Aé😀"},
		{`\101\60`, "A0"},
		{`\d stays`, `\d stays`},
		{`bad \xZZ`, `bad \xZZ`},
		{`short \u12`, `short \u12`},
		{"joined \\\nline", "joined line"},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, unescapePython(tt.in), tt.in)
	}
}

func TestDocstringPrefixes(t *testing.T) {
	t.Parallel()

	doc := extractPython(t, `def upper():
    U"unicode\tprefix"

def raw_upper():
    R'raw\tprefix'

def triple():
    """Line one.

    Line two.
    """
`)

	require.Len(t, doc.Functions, 3)
	assert.Equal(t, "unicode\tprefix", doc.Functions[0].Docstring)
	assert.Equal(t, `raw\tprefix`, doc.Functions[1].Docstring)
	assert.Equal(t, "Line one.\n\n    Line two.\n    ", doc.Functions[2].Docstring)
}
