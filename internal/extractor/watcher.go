package extractor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mvp-joe/docgen/internal/discovery"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ResultHandler receives the outcome of each re-extraction.
type ResultHandler func(result *Result, err error)

// Watcher re-runs a full extraction of rootDir whenever a relevant file
// changes. Every run re-scans the whole tree.
type Watcher struct {
	extractor    *Extractor
	scanner      *discovery.Scanner
	rootDir      string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	onResult     ResultHandler
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a watcher for rootDir. A debounce of zero selects
// DefaultDebounce.
func NewWatcher(e *Extractor, rootDir string, debounce time.Duration, onResult ResultHandler) (*Watcher, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", absRoot, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		extractor:    e,
		scanner:      e.scanner,
		rootDir:      absRoot,
		watcher:      watcher,
		debounceTime: debounce,
		onResult:     onResult,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	// Add directories to watcher recursively
	if err := w.addDirectoriesRecursively(absRoot); err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	rerunCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New directories must be watched before their files show up
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.scanner.ShouldIgnore(w.rootDir, event.Name) {
						if err := w.addDirectoriesRecursively(event.Name); err != nil {
							log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
						}
					}
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			relPath, _ := filepath.Rel(w.rootDir, event.Name)
			changed[relPath] = true

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case rerunCh <- struct{}{}:
				default:
				}
			})

		case <-rerunCh:
			w.rerun(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// rerun re-extracts the whole tree and hands the result to onResult.
func (w *Watcher) rerun(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	log.Printf("Re-extracting due to changes in %d file(s)...", len(changed))
	start := time.Now()

	result, err := w.extractor.ExtractPath(ctx, w.rootDir)
	if err != nil {
		log.Printf("Error during re-extraction: %v", err)
	} else {
		log.Printf("Re-extraction complete in %v (%d python, %d connectors, %d failures)",
			time.Since(start), len(result.PythonDocs), len(result.ConnectorDocs), len(result.Failures))
	}

	if w.onResult != nil {
		w.onResult(result, err)
	}
}

// shouldProcessEvent reports whether an event can change the result: a
// matched file was written, created, removed or renamed, or a directory
// holding such files went away.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if w.scanner.ShouldIgnore(w.rootDir, event.Name) {
		return false
	}

	if w.scanner.Matches(filepath.Base(event.Name)) {
		return true
	}

	// A removed or renamed path no longer exists, so it may have been a
	// directory full of sources.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return true
	}

	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Log but continue - don't fail the entire watch for one directory
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != w.rootDir && w.scanner.ShouldIgnore(w.rootDir, path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil
		}

		return nil
	})
}
