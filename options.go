package substrate

import (
	"github.com/hupe1980/substrate/diag"
)

type arenaOption struct {
	name     string
	capacity int
}

type options struct {
	logger      *diag.Logger
	reporter    diag.Reporter
	memoryLimit int64
	arenas      []arenaOption
	largePages  bool
	stackTraces bool
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger sets the logger used for diagnostics.
//
// If nil is passed, a text logger writing to stderr is used.
func WithLogger(l *diag.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithReporter routes fatal and warning reports to r instead of the logger.
func WithReporter(r diag.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithMemoryLimit caps the bytes held by the allocator and all arenas.
// Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithArena registers an arena reserved when the Runtime is created.
func WithArena(name string, capacity int) Option {
	return func(o *options) {
		o.arenas = append(o.arenas, arenaOption{name: name, capacity: capacity})
	}
}

// WithLargePages makes arenas attempt a huge-page backed reservation first.
func WithLargePages(enabled bool) Option {
	return func(o *options) {
		o.largePages = enabled
	}
}

// WithStackTraces controls whether the default logger attaches stacks to
// fatal reports. Enabled by default.
func WithStackTraces(enabled bool) Option {
	return func(o *options) {
		o.stackTraces = enabled
	}
}
