package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/docgen/internal/config"
	"github.com/mvp-joe/docgen/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test Plan for extract command:
// - Commands are registered on the root command
// - A partially failing tree still emits a report and lists failures on stderr
// - Title and description pass through to the report
// - YAML output and --output file writing
// - Flag overrides win over config values only when set
// - A missing root fails the command
// - The verbose summary outlines imports, classes and functions

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/main.py":       "\"\"\"Entry point.\"\"\"\nimport sys\n\ndef main(argv):\n    pass\n",
		"app/broken.py":     "def broken(:\n",
		"connectors/x.rb":   `{title: "X Connector", connection:{}, actions:{a:1}, triggers:{b:2}, methods:{c:3}, object_definitions:{}, pick_lists:{}}`,
		"connectors/lib.rb": "module Lib; end\n",
		"empty/notes.txt":   "nothing here\n",
	})
	return root
}

func TestCommands_AreRegistered(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["extract"])
	assert.True(t, names["tree"])
	assert.True(t, names["version"])
}

func TestExtract_PartialFailureEmitsReport(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	var stdout, stderr bytes.Buffer

	opts := extractOptions{quiet: true, title: "Demo", description: "Demo project"}
	err := extract(context.Background(), root, config.Default(), opts, &stdout, &stderr)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))

	assert.Equal(t, "Demo", report["title"])
	assert.Equal(t, "Demo project", report["description"])
	assert.Len(t, report["python"], 1)
	assert.Len(t, report["connectors"], 1)
	assert.Len(t, report["failures"], 1)

	assert.Contains(t, stderr.String(), "1 file(s) could not be processed")
	assert.Contains(t, stderr.String(), "broken.py [parse_error]")
}

func TestExtract_YAMLToFile(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	outPath := filepath.Join(t.TempDir(), "out", "report.yaml")

	cfg := config.Default()
	cfg.Output.Format = "yaml"
	cfg.Output.Path = outPath

	var stdout, stderr bytes.Buffer
	require.NoError(t, extract(context.Background(), root, cfg, extractOptions{quiet: true}, &stdout, &stderr))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, yaml.Unmarshal(data, &report))
	connectors := report["connectors"].([]any)
	require.Len(t, connectors, 1)
	assert.Equal(t, "X Connector", connectors[0].(map[string]any)["connector_name"])
}

func TestExtract_MissingRoot(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := extract(context.Background(), filepath.Join(t.TempDir(), "missing"), config.Default(), extractOptions{quiet: true}, &stdout, &stderr)
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestExtract_InvalidFormat(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Output.Format = "xml"

	err := extract(context.Background(), t.TempDir(), cfg, extractOptions{quiet: true}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	// Mutates extractCmd flag state, so not parallel
	cmd := extractCmd
	t.Cleanup(func() {
		for _, name := range []string{"format", "workers"} {
			cmd.Flags().Lookup(name).Changed = false
		}
		extractOpts = extractOptions{}
	})

	require.NoError(t, cmd.Flags().Set("format", "yaml"))
	require.NoError(t, cmd.Flags().Set("workers", "3"))

	cfg := config.Default()
	cfg.Output.Path = "from-config.json"
	opts := extractOpts
	applyFlagOverrides(cmd, cfg, &opts)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Extraction.Workers)
	assert.Equal(t, "from-config.json", cfg.Output.Path)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/mod.py": "\"\"\"Module doc.\nMore.\"\"\"\nfrom ..base import thing as alias\n\nclass Widget:\n    pass\n\ndef build(a, b=1):\n    \"\"\"Build it.\"\"\"\n",
	})

	e, err := extractor.New(extractor.Options{})
	require.NoError(t, err)
	result, err := e.ExtractPath(context.Background(), root)
	require.NoError(t, err)

	var buf bytes.Buffer
	printSummary(&buf, result)

	out := buf.String()
	assert.Contains(t, out, filepath.Join("pkg", "mod.py")+"\n")
	assert.Contains(t, out, "  Module doc.\n")
	assert.Contains(t, out, "  from ..base import thing as alias\n")
	assert.Contains(t, out, "  class Widget: Docstring not defined.\n")
	assert.Contains(t, out, "  def build(a, b): Build it.\n")
}
