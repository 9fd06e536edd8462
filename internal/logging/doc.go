// Package logging assembles structured slog loggers and formatting helpers used
// across the trailarr client.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing (including the rotating log file), and exposes context-aware helpers
// so backend calls and live synchronizers automatically tag log lines with
// correlation IDs, push topics, and subscription IDs. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the client.
package logging
