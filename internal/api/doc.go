// Package api is the boundary between backend JSON and the strict records in
// package model.
//
// The backend is loosely typed: field names vary in case and spelling
// (youtubeId, YoutubeId, YouTubeID, youtube_id), collections arrive bare or
// wrapped in an envelope, and status vocabulary differs between endpoints.
// Every payload is normalized here, immediately on receipt, so the rest of
// the client only handles model types. Records that cannot be normalized are
// dropped and counted; a payload that is not JSON at all is an error wrapping
// services.ErrMalformed.
package api
