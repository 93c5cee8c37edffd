package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/docgen/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for tree command:
// - Matched files are listed under their directories
// - Branches without matched files are pruned
// - An empty tree prints a notice instead of a tree
// - A missing root returns an error
// - Ignore patterns from the scanner are honored

func TestPrintTree_PrunesEmptyBranches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.py":             "",
		"pkg/mod.py":         "",
		"pkg/deep/conn.rb":   "",
		"docs/readme.md":     "",
		"empty/sub/file.txt": "",
	})

	scanner, err := discovery.NewScanner(nil)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, printTree(&stdout, &stderr, scanner, root))

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, root+"/"))
	assert.Contains(t, out, "top.py")
	assert.Contains(t, out, "pkg/")
	assert.Contains(t, out, "mod.py")
	assert.Contains(t, out, "deep/")
	assert.Contains(t, out, "conn.rb")
	assert.NotContains(t, out, "docs")
	assert.NotContains(t, out, "empty")
	assert.NotContains(t, out, "readme.md")
	assert.Empty(t, stderr.String())
}

func TestPrintTree_NoMatches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": ""})

	scanner, err := discovery.NewScanner(nil)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, printTree(&stdout, &stderr, scanner, root))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "No .py or .rb files")
}

func TestPrintTree_IgnorePatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":          "",
		"venv/lib/six.py": "",
	})

	scanner, err := discovery.NewScanner([]string{"venv/**"})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, printTree(&stdout, &stderr, scanner, root))

	assert.Contains(t, stdout.String(), "app.py")
	assert.NotContains(t, stdout.String(), "six.py")
}

func TestPrintTree_MissingRoot(t *testing.T) {
	t.Parallel()

	scanner, err := discovery.NewScanner(nil)
	require.NoError(t, err)

	err = printTree(&bytes.Buffer{}, &bytes.Buffer{}, scanner, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "docgen dev")
}
