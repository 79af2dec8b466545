// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine components use for observability. This package
// includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - EngineLogger with contextual helpers (conversation, request, component)
//     and domain specific helpers for backend calls and dispatch
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
