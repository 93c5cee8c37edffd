// Package config loads docgen settings from defaults, .docgen/config.yml
// and DOCGEN_* environment variables.
package config

import (
	"runtime"
	"time"
)

// Config represents the complete docgen configuration.
// It can be loaded from .docgen/config.yml with environment variable overrides.
type Config struct {
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
}

// DiscoveryConfig controls which directories are scanned.
type DiscoveryConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns relative to the scan root
}

// ExtractionConfig controls the extraction worker pool.
type ExtractionConfig struct {
	Workers     int           `yaml:"workers" mapstructure:"workers"`           // files extracted concurrently
	FileTimeout time.Duration `yaml:"file_timeout" mapstructure:"file_timeout"` // per-file limit, zero or negative disables
}

// OutputConfig controls the emitted report.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "json" or "yaml"
	Path   string `yaml:"path" mapstructure:"path"`     // empty writes to stdout
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			Ignore: []string{},
		},
		Extraction: ExtractionConfig{
			Workers:     runtime.NumCPU(),
			FileTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Format: "json",
			Path:   "",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
