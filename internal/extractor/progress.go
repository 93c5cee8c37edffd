package extractor

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileProcessed is called from worker goroutines and must be safe for
// concurrent use.
type ProgressReporter interface {
	// OnDiscoveryStart is called when the source tree scan begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when the scan finishes.
	OnDiscoveryComplete(pythonFiles, connectorFiles int)

	// OnExtractionStart is called before any file is extracted.
	OnExtractionStart(totalFiles int)

	// OnFileProcessed is called after each file, whether it succeeded or not.
	OnFileProcessed(fileName string)

	// OnComplete is called when the run completes.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                                   {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(pythonFiles, connectorFiles int) {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int)                    {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)                     {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                             {}
