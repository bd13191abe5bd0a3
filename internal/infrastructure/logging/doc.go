// Package logging provides structured logging for smarthouse-core.
//
// It wraps log/slog with level parsing, output/format selection from
// configuration, and default service attributes. All methods are safe
// for concurrent use.
package logging
