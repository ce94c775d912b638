package catalog

import "github.com/go-logr/logr"

// LoadMode controls how definition errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll decodes every folder and returns all errors combined.
	LoadModeCollectAll
)

// DefaultConcurrency bounds the number of definition files decoded at once.
const DefaultConcurrency = 8

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// WithMode sets the error handling mode.
func WithMode(mode LoadMode) Option {
	return func(l *Loader) {
		l.mode = mode
	}
}

// WithConcurrency sets how many definition files are decoded in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}
