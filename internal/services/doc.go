// Package services defines shared utilities consumed by the backend client,
// the live synchronizer, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, push topics, and
//     subscription identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transport, application, or malformed-payload problems.
//
// Use these helpers when wiring new backend calls so operational behaviour
// (error reporting, fallbacks, observability) stays uniform across commands.
package services
