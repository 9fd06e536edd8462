package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trailarr/internal/cache"
	"trailarr/internal/model"
	"trailarr/internal/services"
	"trailarr/internal/testsupport"
)

func TestPutGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()

	movies := []model.Media{{ID: 1, Kind: model.Movie, Title: "Alien"}, {ID: 2, Kind: model.Movie, Title: "Heat"}}
	before := time.Now().Add(-time.Second)
	if err := store.Put(ctx, cache.MediaResource(model.Movie), movies); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got []model.Media
	fetchedAt, err := store.Get(ctx, cache.MediaResource(model.Movie), &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 2 || got[1].Title != "Heat" || got[1].Kind != model.Movie {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if fetchedAt.Before(before) {
		t.Fatalf("fetch time %v predates write", fetchedAt)
	}
}

func TestPutReplacesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()
	resource := cache.ExtrasResource(model.Series, 4)

	first := []model.Extra{{YoutubeID: "a", Status: model.ExtraQueued}}
	second := []model.Extra{{YoutubeID: "a", Status: model.ExtraDownloaded}}
	if err := store.Put(ctx, resource, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, resource, second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got []model.Extra
	if _, err := store.Get(ctx, resource, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0].Status != model.ExtraDownloaded {
		t.Fatalf("expected replaced snapshot, got %+v", got)
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Resource != "extras:series:4" || entries[0].Bytes == 0 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)

	var got []model.TaskSchedule
	_, err := store.Get(context.Background(), cache.ResourceTasks, &got)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	if _, err := cache.Open(cfg); !errors.Is(err, cache.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestReopenKeepsSnapshots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(ctx, cache.ResourceQueue, []model.QueueEntry{{YoutubeID: "q", Status: model.ExtraDownloading}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenCache(t, cfg)
	var got []model.QueueEntry
	if _, err := reopened.Get(ctx, cache.ResourceQueue, &got); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if len(got) != 1 || got[0].YoutubeID != "q" {
		t.Fatalf("unexpected queue %+v", got)
	}
}

func TestClearRefusedWhileSessionOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()

	if err := store.Put(ctx, cache.ResourceBlacklist, []model.BlacklistEntry{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	release, err := store.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	second, err := store.Session()
	if err != nil {
		t.Fatalf("sessions must share the cache: %v", err)
	}

	if _, err := store.Clear(ctx); !errors.Is(err, cache.ErrCacheBusy) {
		t.Fatalf("expected ErrCacheBusy, got %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := second(); err != nil {
		t.Fatalf("release: %v", err)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty cache, got %+v", entries)
	}
}
