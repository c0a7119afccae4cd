// Package logging builds slog loggers with TubeWise's console and JSON
// handlers and provides shared attribute helpers.
package logging
