package access_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trailarr/internal/access"
	"trailarr/internal/backend"
	"trailarr/internal/cache"
	"trailarr/internal/model"
	"trailarr/internal/services"
	"trailarr/internal/testsupport"
)

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func mustClient(t *testing.T, url string) *backend.Client {
	t.Helper()
	client, err := backend.New(url, time.Second)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	return client
}

func TestReadsWriteThroughAndFallBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	fake := testsupport.NewFakeBackend(t)
	fake.SetMedia("series", testsupport.Record{"id": 3, "title": "Dark"})
	fake.SetQueue(testsupport.Record{"youtubeId": "q", "status": "queued"})
	ctx := context.Background()

	online := access.NewAPIAccess(mustClient(t, fake.URL()), store, nil)
	res, err := online.Media(ctx, model.Series)
	if err != nil {
		t.Fatalf("Media: %v", err)
	}
	if res.Offline || len(res.Items) != 1 || res.FetchedAt.IsZero() {
		t.Fatalf("unexpected online result %+v", res)
	}
	if _, err := online.Queue(ctx); err != nil {
		t.Fatalf("Queue: %v", err)
	}

	offline := access.NewAPIAccess(mustClient(t, deadURL(t)), store, nil)
	res, err = offline.Media(ctx, model.Series)
	if err != nil {
		t.Fatalf("Media with backend down: %v", err)
	}
	if !res.Offline || len(res.Items) != 1 || res.Items[0].Title != "Dark" || res.Items[0].Kind != model.Series {
		t.Fatalf("unexpected cached result %+v", res)
	}
	queue, err := offline.Queue(ctx)
	if err != nil || !queue.Offline || len(queue.Items) != 1 {
		t.Fatalf("cached queue = %+v, %v", queue, err)
	}

	if _, err := offline.Tasks(ctx); !backend.IsUnavailable(err) {
		t.Fatalf("uncached resource must report the backend error, got %v", err)
	}
}

func TestApplicationErrorsAreNotServedFromCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()
	if err := store.Put(ctx, cache.ResourceBlacklist, []model.BlacklistEntry{{MediaTitle: "Old"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	fake := testsupport.NewFakeBackend(t)
	fake.Fail(testsupport.PathBlacklist, http.StatusInternalServerError, "database error")
	acc := access.NewAPIAccess(mustClient(t, fake.URL()), store, nil)

	_, err := acc.Blacklist(ctx)
	if !errors.Is(err, services.ErrApplication) {
		t.Fatalf("expected application error, got %v", err)
	}
}

func TestWithoutStoreErrorsPropagate(t *testing.T) {
	acc := access.NewAPIAccess(mustClient(t, deadURL(t)), nil, nil)
	if _, err := acc.Extras(context.Background(), model.Movie, 1); !backend.IsUnavailable(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCacheAccessReadsOnlyCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCache(t, cfg)
	ctx := context.Background()
	extras := []model.Extra{{MediaKind: model.Movie, MediaID: 9, YoutubeID: "x", Status: model.ExtraDownloaded}}
	if err := store.Put(ctx, cache.ExtrasResource(model.Movie, 9), extras); err != nil {
		t.Fatalf("Put: %v", err)
	}

	acc := access.NewCacheAccess(store)
	res, err := acc.Extras(ctx, model.Movie, 9)
	if err != nil {
		t.Fatalf("Extras: %v", err)
	}
	if !res.Offline || len(res.Items) != 1 || res.Items[0].Status != model.ExtraDownloaded {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := acc.Tasks(ctx); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenSessions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeBackend(t)
	client := mustClient(t, fake.URL())
	openStore := func() (*cache.Store, error) { return cache.Open(cfg) }

	session, err := access.Open(client, openStore, false, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if session.Store == nil {
		t.Fatal("expected cache-backed session")
	}
	if _, err := session.Access.Tasks(context.Background()); err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	offline, err := access.Open(client, openStore, true, nil)
	if err != nil {
		t.Fatalf("Open offline: %v", err)
	}
	defer offline.Close()
	res, err := offline.Access.Tasks(context.Background())
	if err != nil || !res.Offline {
		t.Fatalf("offline tasks = %+v, %v", res, err)
	}

	disabled := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	openDisabled := func() (*cache.Store, error) { return cache.Open(disabled) }
	plain, err := access.Open(client, openDisabled, false, nil)
	if err != nil {
		t.Fatalf("Open without cache: %v", err)
	}
	if plain.Store != nil || plain.Close() != nil {
		t.Fatal("expected backend-only session")
	}
	if _, err := access.Open(client, openDisabled, true, nil); !errors.Is(err, cache.ErrDisabled) {
		t.Fatalf("offline without cache = %v", err)
	}
}
