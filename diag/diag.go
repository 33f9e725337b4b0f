package diag

import (
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

// ExitCode is passed to the exit function by Fatal.
const ExitCode = 2

// Reporter receives diagnostics from substrate components.
type Reporter interface {
	// Fatal reports an unrecoverable condition. It must not return.
	Fatal(msg string, args ...any)
	// Warn reports a recoverable condition.
	Warn(msg string, args ...any)
}

// FatalError is the panic value raised by Fatal when the exit function returns.
type FatalError struct {
	Msg   string
	Stack []byte
}

func (e *FatalError) Error() string { return e.Msg }

// Logger is a Reporter backed by slog.
type Logger struct {
	*slog.Logger

	exit    func(code int)
	stacks  bool
	limiter *rate.Limiter
	dropped atomic.Int64
}

var _ Reporter = (*Logger)(nil)

// Option configures a Logger.
type Option func(*Logger)

// WithExit replaces os.Exit as the process terminator.
func WithExit(fn func(code int)) Option {
	return func(l *Logger) {
		l.exit = fn
	}
}

// WithStackTraces attaches the goroutine stack to fatal reports.
func WithStackTraces(enabled bool) Option {
	return func(l *Logger) {
		l.stacks = enabled
	}
}

// WithWarnRate limits warnings to perSecond with the given burst.
// A non-positive perSecond disables limiting.
func WithWarnRate(perSecond float64, burst int) Option {
	return func(l *Logger) {
		if perSecond <= 0 {
			l.limiter = nil
			return
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func New(handler slog.Handler, opts ...Option) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	l := &Logger{
		Logger:  slog.New(handler),
		exit:    os.Exit,
		stacks:  true,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewConsole creates a Logger that writes colored, human-readable text.
func NewConsole(w io.Writer, level slog.Level, opts ...Option) *Logger {
	return New(tint.NewHandler(w, &tint.Options{Level: level}), opts...)
}

// NewJSON creates a Logger that outputs JSON-formatted logs.
func NewJSON(w io.Writer, level slog.Level, opts ...Option) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), opts...)
}

// Nop creates a Logger that discards all log output.
func Nop(opts ...Option) *Logger {
	return New(slog.DiscardHandler, opts...)
}

// Fatal logs msg at error level and terminates the process.
func (l *Logger) Fatal(msg string, args ...any) {
	var stack []byte
	if l.stacks {
		stack = debug.Stack()
		args = append(args, "stack", string(stack))
	}
	l.Logger.Error(msg, args...)

	if l.exit != nil {
		l.exit(ExitCode)
	}
	panic(&FatalError{Msg: msg, Stack: stack})
}

// Warn logs msg at warn level unless the warning rate is exceeded.
func (l *Logger) Warn(msg string, args ...any) {
	if l.limiter != nil && !l.limiter.Allow() {
		l.dropped.Add(1)
		return
	}
	if n := l.dropped.Swap(0); n > 0 {
		args = append(args, "suppressed", n)
	}
	l.Logger.Warn(msg, args...)
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	c := &Logger{
		Logger:  l.Logger.With(args...),
		exit:    l.exit,
		stacks:  l.stacks,
		limiter: l.limiter,
	}
	return c
}

// Or returns r, or a default stderr Logger if r is nil.
func Or(r Reporter) Reporter {
	if r == nil {
		return New(nil)
	}
	return r
}
