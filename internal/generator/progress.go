package generator

// ProgressReporter provides callbacks for reporting batch progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when input discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when discovery finishes.
	OnDiscoveryComplete(inputs int)

	// OnFileProcessed is called after each input, successful or not.
	OnFileProcessed(input string, err error)

	// OnComplete is called when the batch finishes.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                       {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(inputs int)          {}
func (n *NoOpProgressReporter) OnFileProcessed(input string, err error) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                 {}
