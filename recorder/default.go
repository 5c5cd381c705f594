package recorder

import "sync"

// The process-wide recorder serves codebases that instrument from many
// packages without threading a *Recorder through every signature.
// Prefer passing a Recorder explicitly; this accessor is a
// convenience, not the primary API.

var (
	defaultMu sync.RWMutex
	defaultR  = New()
)

// Default returns the process-wide recorder.
func Default() *Recorder {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultR
}

// SetDefault replaces the process-wide recorder and returns a
// function to restore the previous one, for scoped use in tests.
func SetDefault(r *Recorder) func() {
	defaultMu.Lock()
	prev := defaultR
	defaultR = r
	defaultMu.Unlock()
	return func() {
		defaultMu.Lock()
		defaultR = prev
		defaultMu.Unlock()
	}
}
