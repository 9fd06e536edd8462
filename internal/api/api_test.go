package api_test

import (
	"errors"
	"testing"
	"time"

	"trailarr/internal/api"
	"trailarr/internal/model"
	"trailarr/internal/services"
)

func TestParseMediaEnvelopeAndAliases(t *testing.T) {
	payload := []byte(`{"items": [
		{"id": 12, "title": "Alien", "sortTitle": "alien", "overview": "Space.", "year": 1979, "path": "/movies/Alien (1979)",
		 "alternateTitles": [{"title": "Alien: Le 8ème passager"}, "Alien 1"]},
		{"id": "13", "Title": "Heat"},
		{"title": "no id"},
		"not an object"
	]}`)
	batch, err := api.ParseMedia(model.Movie, payload)
	if err != nil {
		t.Fatalf("ParseMedia: %v", err)
	}
	if len(batch.Items) != 2 || batch.Dropped != 2 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	alien := batch.Items[0]
	if alien.ID != 12 || alien.Kind != model.Movie || alien.Year != 1979 || len(alien.AlternateTitles) != 2 {
		t.Fatalf("unexpected media %+v", alien)
	}
	if batch.Items[1].ID != 13 || batch.Items[1].Title != "Heat" {
		t.Fatalf("expected string id and capitalised key to normalize, got %+v", batch.Items[1])
	}
}

func TestParseMediaBareArray(t *testing.T) {
	batch, err := api.ParseMedia(model.Series, []byte(`[{"id": 1, "title": "Dark"}]`))
	if err != nil || len(batch.Items) != 1 || batch.Items[0].Kind != model.Series {
		t.Fatalf("unexpected %+v %v", batch, err)
	}
}

func TestParseMediaRejectsGarbage(t *testing.T) {
	for _, payload := range []string{`{"unexpected": true}`, `"text"`, `{"items": 3}`, `{broken`} {
		if _, err := api.ParseMedia(model.Movie, []byte(payload)); !errors.Is(err, services.ErrMalformed) {
			t.Fatalf("payload %s: expected ErrMalformed, got %v", payload, err)
		}
	}
}

func TestParseExtrasFieldAliases(t *testing.T) {
	payload := []byte(`{"extras": [
		{"YoutubeId": "a", "Title": "Trailer", "Type": "Trailers", "Status": "queued"},
		{"youtube_id": "b", "extraTitle": "Teaser", "extraType": "Trailers", "status": "missing"},
		{"YouTubeID": "c", "title": "Clip", "type": "Featurettes", "status": "rejected", "reason": "Private video."},
		{"youtubeId": "d", "status": "exploded"},
		{"title": "no id"}
	]}`)
	batch, err := api.ParseExtras(model.Movie, 12, payload)
	if err != nil {
		t.Fatalf("ParseExtras: %v", err)
	}
	if len(batch.Items) != 3 || batch.Dropped != 2 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	a, b, c := batch.Items[0], batch.Items[1], batch.Items[2]
	if a.YoutubeID != "a" || a.Status != model.ExtraQueued || a.Title != "Trailer" || a.MediaID != 12 || a.MediaKind != model.Movie {
		t.Fatalf("unexpected first extra %+v", a)
	}
	if b.Status != model.ExtraNotDownloaded || b.Title != "Teaser" {
		t.Fatalf("unexpected second extra %+v", b)
	}
	if c.Status != model.ExtraRejected || c.Reason != "Private video." {
		t.Fatalf("unexpected third extra %+v", c)
	}
}

func TestParseBlacklistRequiresMediaType(t *testing.T) {
	payload := []byte(`[
		{"mediaType": "tv", "mediaId": 4, "mediaTitle": "Dark", "extraTitle": "Trailer", "extraType": "Trailers", "youtubeId": "x1", "reason": "ERROR: [youtube] x1: Private video."},
		{"mediaId": 5, "youtubeId": "x2"}
	]`)
	batch, err := api.ParseBlacklist(payload)
	if err != nil {
		t.Fatalf("ParseBlacklist: %v", err)
	}
	if len(batch.Items) != 1 || batch.Dropped != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	entry := batch.Items[0]
	if entry.MediaKind != model.Series || entry.MediaTitle != "Dark" || entry.Status != model.ExtraRejected {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestParseQueueTimes(t *testing.T) {
	payload := []byte(`{"queue": [{"mediaType": "movie", "mediaId": 1, "YouTubeID": "a", "Status": "downloading",
		"QueuedAt": "2026-01-02T03:04:05Z", "startedAt": 1767323045, "endedAt": "2026-01-02T03:05:05Z"}]}`)
	batch, err := api.ParseQueue(payload)
	if err != nil || len(batch.Items) != 1 {
		t.Fatalf("unexpected %+v %v", batch, err)
	}
	entry := batch.Items[0]
	if !entry.QueuedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected queuedAt %v", entry.QueuedAt)
	}
	if entry.StartedAt.IsZero() || entry.Duration != time.Minute {
		t.Fatalf("expected duration derived from start/end, got %+v", entry)
	}
}

func TestParseTasksIntervalSentinel(t *testing.T) {
	payload := []byte(`{"schedules": [
		{"taskId": "radarr", "name": "Sync Radarr", "interval": 15, "lastExecution": "2026-01-02T03:04:05Z", "lastDuration": 2.5, "status": "success"},
		{"taskId": "extras", "name": "Search Extras", "interval": 0, "status": "idle"},
		{"taskId": "bad", "status": "sleeping"}
	]}`)
	batch, err := api.ParseTasks(payload)
	if err != nil {
		t.Fatalf("ParseTasks: %v", err)
	}
	if len(batch.Items) != 2 || batch.Dropped != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if batch.Items[0].Interval != 15*time.Minute || batch.Items[0].LastDuration != 2500*time.Millisecond {
		t.Fatalf("unexpected first task %+v", batch.Items[0])
	}
	if !batch.Items[1].Disabled() {
		t.Fatal("expected zero interval to be disabled")
	}
}

func TestParseBatchStatusShapes(t *testing.T) {
	mapped := []byte(`{"statuses": {"AbC": "downloaded", "xyz": {"status": "failed", "reason": "boom"}, "q": "??"}}`)
	batch, err := api.ParseBatchStatus(mapped, model.SourcePoll)
	if err != nil {
		t.Fatalf("ParseBatchStatus: %v", err)
	}
	if len(batch.Items) != 2 || batch.Dropped != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if batch.Items[0].Key != "AbC" || batch.Items[0].Status != model.ExtraDownloaded {
		t.Fatalf("expected case preserved key, got %+v", batch.Items[0])
	}
	if batch.Items[1].Key != "xyz" || !batch.Items[1].HasReason || batch.Items[1].Reason != "boom" {
		t.Fatalf("unexpected record update %+v", batch.Items[1])
	}

	listed, err := api.ParseBatchStatus([]byte(`[{"youtubeId": "a", "status": "queued"}]`), model.SourcePoll)
	if err != nil || len(listed.Items) != 1 || listed.Items[0].HasReason {
		t.Fatalf("unexpected list form %+v %v", listed, err)
	}
}

func TestErrorMessage(t *testing.T) {
	if msg, ok := api.ErrorMessage([]byte(`{"error": "Media not found"}`)); !ok || msg != "Media not found" {
		t.Fatalf("unexpected %q %v", msg, ok)
	}
	if _, ok := api.ErrorMessage([]byte(`{"status": "queued"}`)); ok {
		t.Fatal("expected no error message")
	}
}

func TestPolledUpdatesCarryReason(t *testing.T) {
	updates := api.PolledUpdates([]model.Extra{{YoutubeID: "a", Status: model.ExtraDownloaded}})
	if len(updates) != 1 || !updates[0].HasReason || updates[0].Source != model.SourcePoll {
		t.Fatalf("unexpected updates %+v", updates)
	}
}
