// Package livesync keeps a local collection of items in step with the
// backend. A Synchronizer follows one push channel and overwrites the status
// of matching items as events arrive. When the channel fails it falls back to
// polling the same resource until a reconnect succeeds.
//
// Feeds adapt the generic machinery to a feature: ExtrasFeed and
// BlacklistFeed follow the download queue, TasksFeed follows the scheduler.
package livesync
