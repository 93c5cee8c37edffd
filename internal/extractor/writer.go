package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/docgen/internal/docmodel"
	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for a format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatYAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q (expected json or yaml)", ErrUnknownFormat, name)
	}
}

// Report is the document handed to a renderer: the extracted records plus
// the project title and description, which are passed through untouched.
type Report struct {
	Title       string                  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	RunID       string                  `json:"run_id" yaml:"run_id"`
	Root        string                  `json:"root" yaml:"root"`
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	Python      []docmodel.FileDoc      `json:"python" yaml:"python"`
	Connectors  []docmodel.ConnectorDoc `json:"connectors" yaml:"connectors"`
	Failures    []docmodel.Failure      `json:"failures" yaml:"failures"`
	Stats       Stats                   `json:"stats" yaml:"stats"`
}

// NewReport wraps result for output.
func NewReport(result *Result, title, description string) *Report {
	return &Report{
		Title:       title,
		Description: description,
		RunID:       result.RunID,
		Root:        result.Root,
		GeneratedAt: time.Now().UTC(),
		Python:      nonNil(result.PythonDocs),
		Connectors:  nonNil(result.ConnectorDocs),
		Failures:    nonNil(result.Failures),
		Stats:       result.Stats,
	}
}

// Encode writes the report to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes the report atomically: it is encoded to a temp file in
// the destination directory, then renamed over path.
func (r *Report) WriteFile(path string, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if err := r.Encode(tmp, format); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
