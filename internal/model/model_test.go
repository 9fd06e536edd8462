package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"trailarr/internal/model"
)

func TestParseKind(t *testing.T) {
	cases := map[string]model.Kind{
		"movie":    model.Movie,
		" Movies ": model.Movie,
		"tv":       model.Series,
		"series":   model.Series,
		"Show":     model.Series,
	}
	for raw, want := range cases {
		got, err := model.ParseKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := model.ParseKind("music"); !errors.Is(err, model.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKindValues(t *testing.T) {
	if model.Series.APIValue() != "tv" || model.Movie.APIValue() != "movie" {
		t.Fatal("unexpected api discriminators")
	}
	if model.Series.PathSegment() != "series" || model.Movie.PathSegment() != "movies" {
		t.Fatal("unexpected path segments")
	}
	if model.KindUnknown.Valid() {
		t.Fatal("zero kind must be invalid")
	}
}

func TestMatchKindRequiresKnownKind(t *testing.T) {
	label := func(k model.Kind) (string, error) {
		return model.MatchKind(k, func() string { return "film" }, func() string { return "show" })
	}
	if got, err := label(model.Movie); err != nil || got != "film" {
		t.Fatalf("movie: %q %v", got, err)
	}
	if got, err := label(model.Series); err != nil || got != "show" {
		t.Fatalf("series: %q %v", got, err)
	}
	if _, err := label(model.KindUnknown); !errors.Is(err, model.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if model.KindUnknown.APIValue() != "" || model.KindUnknown.PathSegment() != "" || model.KindUnknown.String() != "unknown" {
		t.Fatal("zero kind must have no backend names")
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(model.Media{ID: 3, Kind: model.Series, Title: "Dark"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back model.Media
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != model.Series || back.Key() != "series:3" {
		t.Fatalf("unexpected round trip %+v", back)
	}
	data, err = json.Marshal(model.QueueEntry{YoutubeID: "x"})
	if err != nil {
		t.Fatalf("marshal unknown kind: %v", err)
	}
	var entry model.QueueEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.MediaKind != model.KindUnknown {
		t.Fatalf("expected unknown kind round trip, got %v %v", entry.MediaKind, err)
	}
}

func TestParseExtraStatusAliases(t *testing.T) {
	cases := map[string]model.ExtraStatus{
		"missing":     model.ExtraNotDownloaded,
		"Deleted":     model.ExtraNotDownloaded,
		"queued":      model.ExtraQueued,
		"running":     model.ExtraDownloading,
		"downloaded":  model.ExtraDownloaded,
		"blacklisted": model.ExtraRejected,
		"error":       model.ExtraFailed,
	}
	for raw, want := range cases {
		got, ok := model.ParseExtraStatus(raw)
		if !ok || got != want {
			t.Fatalf("ParseExtraStatus(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := model.ParseExtraStatus("exploded"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if !model.ExtraQueued.Active() || model.ExtraDownloaded.Active() {
		t.Fatal("unexpected Active classification")
	}
}

func TestParseTaskStatus(t *testing.T) {
	if got, ok := model.ParseTaskStatus("Completed"); !ok || got != model.TaskSuccess {
		t.Fatalf("unexpected %q %v", got, ok)
	}
	if _, ok := model.ParseTaskStatus("paused?"); ok {
		t.Fatal("expected unknown task status to be rejected")
	}
}

func TestStatusUpdateApplyTo(t *testing.T) {
	extra := model.Extra{YoutubeID: "a", Title: "Trailer", Status: model.ExtraQueued, Reason: "old"}

	update := model.StatusUpdate{Key: "a", Status: model.ExtraDownloaded}
	if !update.ApplyTo(&extra.Status, &extra.Reason) {
		t.Fatal("expected change")
	}
	if extra.Status != model.ExtraDownloaded || extra.Reason != "old" || extra.Title != "Trailer" {
		t.Fatalf("unexpected extra %+v", extra)
	}

	update = model.StatusUpdate{Key: "a", Status: model.ExtraDownloaded, Reason: "", HasReason: true}
	if !update.ApplyTo(&extra.Status, &extra.Reason) || extra.Reason != "" {
		t.Fatalf("expected reason to be cleared, got %+v", extra)
	}
	if update.ApplyTo(&extra.Status, &extra.Reason) {
		t.Fatal("expected no change on identical update")
	}
}

func TestTaskScheduleDisabled(t *testing.T) {
	if !(model.TaskSchedule{ID: "x"}).Disabled() {
		t.Fatal("zero interval should be disabled")
	}
}
