// Package blacklist normalizes backend failure reasons into display
// categories and groups blacklist entries under them.
//
// yt-dlp failure messages carry the video identifier and trailing detail
// that differ for every entry. NormalizeReason strips both so entries that
// failed for the same reason land in one group.
package blacklist
