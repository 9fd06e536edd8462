// Package main hosts the trailarr CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the Trailarr REST
// API: catalog listings and search, extras downloads, blacklist triage, task
// scheduling, and settings. Read commands go through the access layer so an
// unreachable backend falls back to the offline snapshot cache. The watch
// commands start a live status synchronizer and redraw whenever the backend
// pushes or polling observes a change.
//
// Configuration resolution, logger construction, and backend client setup
// live in commandContext so subcommands only describe their arguments and
// output.
package main
