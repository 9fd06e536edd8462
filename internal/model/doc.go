// Package model defines the strict records the client works with after
// backend payloads pass the api normalization boundary: catalog media,
// extras, download-queue entries, blacklist entries, task schedules, and
// the status updates the live synchronizer merges into them.
//
// Media kind is a closed variant. Code that behaves differently for movies
// and series should go through MatchKind so a new variant cannot be
// silently ignored.
package model
