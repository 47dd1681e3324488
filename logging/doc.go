// Package logging provides a minimal logging interface and adapters.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runtime, scheduler and client use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ComponentLogger with component / run attributes and resume / sweep helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	rt := coroutine.New(func(o *coroutine.Options) { o.Logger = logger })
//
// Output defaults to stderr; stdout is reserved for the board display.
package logging
