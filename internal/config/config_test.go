package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfigFromDir() uses defaults when no config file exists
// - Load() reads .docgen/config.yml and .docgen/config.yaml
// - Config file values merge with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects non-positive workers, unknown formats, bad globs
//   and negative debounce
// - Validate() reports every invalid field and each matches errors.Is

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".docgen")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.Discovery.Ignore)
	assert.Equal(t, runtime.NumCPU(), cfg.Extraction.Workers)
	assert.Equal(t, 30*time.Second, cfg.Extraction.FileTimeout)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "", cfg.Output.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	defaults := Default()
	assert.Empty(t, cfg.Discovery.Ignore)
	assert.Equal(t, defaults.Extraction, cfg.Extraction)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Watch, cfg.Watch)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
discovery:
  ignore:
    - "venv/**"
    - "**/migrations/**"
extraction:
  workers: 2
  file_timeout: 5s
output:
  format: yaml
  path: docs/metadata.yaml
watch:
  debounce: 1s
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"venv/**", "**/migrations/**"}, cfg.Discovery.Ignore)
	assert.Equal(t, 2, cfg.Extraction.Workers)
	assert.Equal(t, 5*time.Second, cfg.Extraction.FileTimeout)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "docs/metadata.yaml", cfg.Output.Path)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "extraction:\n  workers: 3\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Extraction.Workers)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "output:\n  format: yaml\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, runtime.NumCPU(), cfg.Extraction.Workers)
	assert.Equal(t, 30*time.Second, cfg.Extraction.FileTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "extraction:\n  workers: 2\noutput:\n  format: json\n")

	t.Setenv("DOCGEN_EXTRACTION_WORKERS", "8")
	t.Setenv("DOCGEN_OUTPUT_FORMAT", "yaml")
	t.Setenv("DOCGEN_EXTRACTION_FILE_TIMEOUT", "2m")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Extraction.Workers)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 2*time.Minute, cfg.Extraction.FileTimeout)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("DOCGEN_OUTPUT_PATH", "/tmp/report.json")
	t.Setenv("DOCGEN_WATCH_DEBOUNCE", "250ms")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/report.json", cfg.Output.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "extraction:\n  workers: [unclosed\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "output:\n  format: xml\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{"zero workers", func(c *Config) { c.Extraction.Workers = 0 }, ErrInvalidWorkers},
		{"negative workers", func(c *Config) { c.Extraction.Workers = -1 }, ErrInvalidWorkers},
		{"unknown format", func(c *Config) { c.Output.Format = "toml" }, ErrInvalidFormat},
		{"bad glob", func(c *Config) { c.Discovery.Ignore = []string{"[unclosed"} }, ErrInvalidPattern},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, ErrInvalidDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.expected)
		})
	}
}

func TestValidate_AcceptsDisabledTimeoutAndUppercaseFormat(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extraction.FileTimeout = -1
	cfg.Output.Format = "YAML"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extraction.Workers = 0
	cfg.Output.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
