// Package cache keeps the last successful backend read of each resource in
// SQLite so the CLI can answer while the backend is unreachable.
//
// Each snapshot row holds one resource (a catalog, the extras of one media
// item, the blacklist, the task list, the queue) as normalized JSON plus the
// time it was fetched. The cache is disposable: a cache written under an
// older schema version is dropped and rebuilt on open.
//
// Long-running watch sessions hold a shared file lock beside the database;
// Clear takes the lock exclusively and refuses to run while a session is open.
package cache
