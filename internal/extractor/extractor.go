package extractor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/docgen/internal/discovery"
	"github.com/mvp-joe/docgen/internal/docmodel"
	"github.com/mvp-joe/docgen/internal/extractor/parsers"
	"golang.org/x/sync/errgroup"
)

// DefaultFileTimeout bounds the time spent on a single file.
const DefaultFileTimeout = 30 * time.Second

// Options configures an Extractor. Zero values select the defaults.
type Options struct {
	// Workers is the number of files extracted concurrently.
	// Defaults to runtime.NumCPU(); 1 processes files strictly in order.
	Workers int

	// FileTimeout abandons a file that takes longer than this.
	// Defaults to DefaultFileTimeout; a negative value disables it.
	FileTimeout time.Duration

	// Scanner is used by ExtractPath. Defaults to a scanner without
	// ignore rules.
	Scanner *discovery.Scanner

	// Progress receives callbacks. May be nil.
	Progress ProgressReporter
}

// Stats summarizes one run.
type Stats struct {
	PythonFiles    int           `json:"python_files" yaml:"python_files"`
	ConnectorFiles int           `json:"connector_files" yaml:"connector_files"`
	PythonDocs     int           `json:"python_docs" yaml:"python_docs"`
	ConnectorDocs  int           `json:"connector_docs" yaml:"connector_docs"`
	Failures       int           `json:"failures" yaml:"failures"`
	ProcessingTime time.Duration `json:"processing_time" yaml:"processing_time"`
}

// Result is the outcome of extracting a whole source tree. Every slice is
// sorted (docs by filename, failures by path) and holds at most one entry
// per file.
type Result struct {
	RunID         string
	Root          string
	PythonDocs    []docmodel.FileDoc
	ConnectorDocs []docmodel.ConnectorDoc
	Failures      []docmodel.Failure
	Stats         Stats
}

// Extractor routes discovered files to the Python and connector extractors
// and assembles a filename-keyed result set. A failing file is recorded
// and never stops its siblings.
type Extractor struct {
	workers     int
	fileTimeout time.Duration
	scanner     *discovery.Scanner
	python      *parsers.PythonExtractor
	connectors  *parsers.ConnectorExtractor
	progress    ProgressReporter
}

// New creates an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.FileTimeout == 0 {
		opts.FileTimeout = DefaultFileTimeout
	}
	if opts.Scanner == nil {
		scanner, err := discovery.NewScanner(nil)
		if err != nil {
			return nil, err
		}
		opts.Scanner = scanner
	}
	if opts.Progress == nil {
		opts.Progress = &NoOpProgressReporter{}
	}

	return &Extractor{
		workers:     opts.Workers,
		fileTimeout: opts.FileTimeout,
		scanner:     opts.Scanner,
		python:      parsers.NewPythonExtractor(),
		connectors:  parsers.NewConnectorExtractor(),
		progress:    opts.Progress,
	}, nil
}

// ExtractPath scans root and extracts every discovered file. Only a root
// that cannot be scanned returns an error.
func (e *Extractor) ExtractPath(ctx context.Context, root string) (*Result, error) {
	e.progress.OnDiscoveryStart()

	tree, err := e.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	e.progress.OnDiscoveryComplete(tree.Count(docmodel.PythonExt), tree.Count(docmodel.RubyExt))

	return e.Run(ctx, tree)
}

// Run extracts every file in tree and merges the tree's skipped
// directories into the failure list.
func (e *Extractor) Run(ctx context.Context, tree *discovery.SourceTree) (*Result, error) {
	if tree == nil {
		return nil, errors.New("nil source tree")
	}

	start := time.Now()
	pythonPaths := discovery.Flatten(tree, docmodel.PythonExt)
	connectorPaths := discovery.Flatten(tree, docmodel.RubyExt)

	e.progress.OnExtractionStart(len(pythonPaths) + len(connectorPaths))

	pythonDocs, pythonFailures := e.ExtractPython(ctx, pythonPaths)
	connectorDocs, connectorFailures := e.ExtractConnectors(ctx, connectorPaths)

	failures := tree.Failures()
	failures = append(failures, pythonFailures...)
	failures = append(failures, connectorFailures...)
	slices.SortStableFunc(failures, func(a, b docmodel.Failure) int {
		return cmp.Compare(a.Path, b.Path)
	})

	result := &Result{
		RunID:         uuid.New().String(),
		Root:          tree.Path,
		PythonDocs:    pythonDocs,
		ConnectorDocs: connectorDocs,
		Failures:      failures,
		Stats: Stats{
			PythonFiles:    len(pythonPaths),
			ConnectorFiles: len(connectorPaths),
			PythonDocs:     len(pythonDocs),
			ConnectorDocs:  len(connectorDocs),
			Failures:       len(failures),
			ProcessingTime: time.Since(start),
		},
	}

	e.progress.OnComplete(&result.Stats)

	return result, nil
}

// ExtractPython extracts every path as Python source. Docs are sorted by
// filename; each file that fails appears once in the failures.
func (e *Extractor) ExtractPython(ctx context.Context, paths []string) ([]docmodel.FileDoc, []docmodel.Failure) {
	docs, failures := extractAll(ctx, e, paths, e.python.ExtractFile)
	return sortedValues(docs), sortedValues(failures)
}

// ExtractConnectors extracts every path as a Ruby connector. Files that
// do not have the connector shape are omitted without a failure.
func (e *Extractor) ExtractConnectors(ctx context.Context, paths []string) ([]docmodel.ConnectorDoc, []docmodel.Failure) {
	docs, failures := extractAll(ctx, e, paths, e.connectors.ExtractFile)
	return sortedValues(docs), sortedValues(failures)
}

// extractAll runs extract over paths on a bounded worker pool. A nil
// record with a nil error means the file produced nothing. Paths never
// started because ctx ended are recorded as cancelled.
func extractAll[T any](
	ctx context.Context,
	e *Extractor,
	paths []string,
	extract func(context.Context, string) (*T, error),
) (map[string]T, map[string]docmodel.Failure) {
	var mu sync.Mutex
	records := make(map[string]T, len(paths))
	failures := make(map[string]docmodel.Failure)

	record := func(path string, rec *T, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures[path] = docmodel.FailureFromError(path, err)
			return
		}
		if rec != nil {
			records[path] = *rec
		}
	}

	var g errgroup.Group
	g.SetLimit(e.workers)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			record(path, nil, err)
			continue
		}

		g.Go(func() error {
			rec, err := extractFile(ctx, e.fileTimeout, path, extract)
			record(path, rec, err)
			e.progress.OnFileProcessed(path)
			return nil
		})
	}

	// Workers never return errors; failures are collected per file.
	_ = g.Wait()

	return records, failures
}

// extractFile runs extract under the per-file timeout.
func extractFile[T any](ctx context.Context, timeout time.Duration, path string, extract func(context.Context, string) (*T, error)) (*T, error) {
	if timeout <= 0 {
		return extract(ctx, path)
	}

	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rec, err := extract(fileCtx, path)
	if err != nil && fileCtx.Err() != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s", docmodel.ErrTimeout, timeout)
	}
	return rec, err
}

func sortedValues[T any](m map[string]T) []T {
	values := make([]T, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		values = append(values, m[key])
	}
	return values
}
