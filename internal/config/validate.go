package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidPattern indicates an ignore glob that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateDiscovery(&cfg.Discovery); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce cannot be negative, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateDiscovery(cfg *DiscoveryConfig) error {
	var errs []error

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtraction(cfg *ExtractionConfig) error {
	// A zero or negative file timeout disables the limit, so only workers is checked
	if cfg.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers)
	}
	return nil
}

func validateOutput(cfg *OutputConfig) error {
	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("%w: must be 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}

// validationError lists every failed check and matches each of them with
// errors.Is.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
