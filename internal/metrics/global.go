package metrics

import "sync"

var (
	globalRecorder *Recorder
	once           sync.Once
)

// Global returns the process-wide recorder, registered on its own registry.
func Global() *Recorder {
	once.Do(func() {
		globalRecorder = NewRecorder(nil)
	})
	return globalRecorder
}
