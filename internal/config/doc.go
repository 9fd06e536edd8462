// Package config loads, normalizes, and validates trailarr client configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRAILARR_URL. The Config type centralizes every knob the CLI and the live
// synchronizer need so backend location, sync cadence, cache placement, and
// log routing are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, canonical log formats, and clear validation errors.
package config
