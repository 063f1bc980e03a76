// Package logging assembles structured slog loggers used across tailpipe.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// session handler that stamps every record from one CLI invocation with the
// same identifier. The package also provides a no-op logger for tests and for
// library code that receives no logger.
//
// Loggers built here never write to stdout unless asked to: when a process
// speaks its protocol over stdout, diagnostics have to go elsewhere.
package logging
