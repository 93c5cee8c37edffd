package docmodel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrPathNotFound indicates a root or subdirectory that does not exist
	ErrPathNotFound = errors.New("path not found")

	// ErrPermissionDenied indicates a directory or file that cannot be read
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates a scan root that is not a directory
	ErrNotDirectory = errors.New("not a directory")

	// ErrTimeout indicates a file whose extraction exceeded the per-file timeout
	ErrTimeout = errors.New("extraction timed out")
)

// ParseError reports Python source that does not conform to the grammar.
// Line and Column are 1-indexed and point at the first offending node.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Message)
}

// FailureKind classifies a recoverable failure.
type FailureKind string

const (
	FailurePathNotFound     FailureKind = "path_not_found"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureNotDirectory     FailureKind = "not_directory"
	FailureParseError       FailureKind = "parse_error"
	FailureTimeout          FailureKind = "timeout"
	FailureCancelled        FailureKind = "cancelled"
	FailureReadError        FailureKind = "read_error"
)

// Failure records one file or directory that produced no documentation.
type Failure struct {
	Path    string      `json:"path" yaml:"path"`
	Kind    FailureKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s [%s]: %s", f.Path, f.Kind, f.Message)
}

// KindOf maps an error onto the failure taxonomy.
func KindOf(err error) FailureKind {
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		return FailureParseError
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case errors.Is(err, ErrPathNotFound), errors.Is(err, fs.ErrNotExist):
		return FailurePathNotFound
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return FailurePermissionDenied
	case errors.Is(err, ErrNotDirectory):
		return FailureNotDirectory
	default:
		return FailureReadError
	}
}

// FailureFromError builds a Failure for path from err.
func FailureFromError(path string, err error) Failure {
	return Failure{
		Path:    path,
		Kind:    KindOf(err),
		Message: err.Error(),
	}
}
