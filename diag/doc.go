// Package diag is the diagnostics sink shared by all substrate components.
//
// Components never decide on their own how to report a broken contract.
// Instead they receive a Reporter at construction time and call:
//
//   - Fatal for unrecoverable conditions (capacity exceeded, invalid or
//     double free, out-of-bounds access). Fatal logs the message, optionally
//     with the current goroutine stack, and terminates the process. It
//     never returns to the caller.
//   - Warn for degraded but recoverable situations (a pool refusing an
//     allocation because it is full). Warnings are rate limited.
//
// # Loggers
//
//	d := diag.NewConsole(os.Stderr, slog.LevelInfo)              // colored text (tint)
//	d := diag.NewJSON(os.Stderr, slog.LevelInfo)                 // JSON lines
//	d := diag.New(handler, diag.WithStackTraces(true))           // any slog.Handler
//	d := diag.Nop()                                              // discard output
//
// # Testing
//
// A Logger built WithExit(func(int) {}) does not terminate; Fatal then
// panics with *FatalError so tests can assert the failure:
//
//	d := diag.Nop(diag.WithExit(func(int) {}))
//	assert.PanicsWithError(t, "pool: invalid free", func() { p.Free(99) })
package diag
