package main

import (
	"encoding/json"
	"strings"
	"testing"

	"trailarr/internal/model"
	"trailarr/internal/search"
	"trailarr/internal/testsupport"
)

const unreachableURL = "http://127.0.0.1:1"

func seedCatalog(env *cliTestEnv) {
	env.fake.SetMedia("movies",
		testsupport.Record{"id": 1, "title": "Alien", "year": 1979, "overview": "A crew in deep space."},
		testsupport.Record{"id": 2, "title": "Space Jam", "year": 1996},
	)
	env.fake.SetMedia("series",
		testsupport.Record{"id": 7, "title": "Dark", "overview": "Time travel in a small town."},
	)
}

func TestMediaListShowsCatalogs(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCatalog(env)

	stdout, _, err := env.run(t, "media", "list")
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	for _, want := range []string{"Alien", "Space Jam", "Dark", "1979"} {
		requireContains(t, stdout, want)
	}

	stdout, _, err = env.run(t, "media", "list", "--kind", "movie")
	if err != nil {
		t.Fatalf("media list --kind movie: %v", err)
	}
	requireContains(t, stdout, "Alien")
	requireNotContains(t, stdout, "Dark")

	if _, _, err := env.run(t, "media", "list", "--kind", "book"); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestMediaListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCatalog(env)

	stdout, _, err := env.run(t, "--json", "media", "list", "--kind", "series")
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	var decoded listing[model.Media]
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if decoded.Offline || len(decoded.Items) != 1 || decoded.Items[0].Kind != model.Series || decoded.Items[0].Title != "Dark" {
		t.Fatalf("unexpected listing %+v", decoded)
	}
}

func TestMediaListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "media", "list")
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	requireContains(t, stdout, "No media")
}

func TestMediaListFallsBackToCache(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCatalog(env)

	if _, _, err := env.run(t, "media", "list"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	stdout, stderr, err := env.run(t, "--url", unreachableURL, "media", "list")
	if err != nil {
		t.Fatalf("media list offline: %v", err)
	}
	requireContains(t, stdout, "Alien")
	requireContains(t, stderr, "showing cached data")

	hits := env.fake.Hits(testsupport.PathMovies)
	stdout, _, err = env.run(t, "--offline", "--json", "media", "list", "--kind", "movie")
	if err != nil {
		t.Fatalf("media list --offline: %v", err)
	}
	if got := env.fake.Hits(testsupport.PathMovies); got != hits {
		t.Fatalf("--offline contacted the backend: %d -> %d hits", hits, got)
	}
	var decoded listing[model.Media]
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Offline || decoded.FetchedAt == nil || len(decoded.Items) != 2 {
		t.Fatalf("unexpected offline listing %+v", decoded)
	}
}

func TestMediaListUnreachableWithoutCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCacheDisabled())

	_, _, err := env.run(t, "--url", unreachableURL, "media", "list")
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}

func TestMediaListApplicationErrorIsNotMasked(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCatalog(env)
	if _, _, err := env.run(t, "media", "list"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	env.fake.Fail(testsupport.PathMovies, 500, "database is locked")
	_, _, err := env.run(t, "media", "list", "--kind", "movie")
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestSearchPartitionsMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCatalog(env)

	stdout, _, err := env.run(t, "search", "space")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, stdout, "Title matches (1)")
	requireContains(t, stdout, "Overview matches (1)")
	titleAt := strings.Index(stdout, "Space Jam")
	overviewAt := strings.Index(stdout, "Alien")
	if titleAt < 0 || overviewAt < 0 || titleAt > overviewAt {
		t.Fatalf("expected title match before overview match:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "--json", "search", "small", "town")
	if err != nil {
		t.Fatalf("search --json: %v", err)
	}
	var result search.Result
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.TitleMatches) != 0 || len(result.OverviewMatches) != 1 || result.OverviewMatches[0].Title != "Dark" {
		t.Fatalf("unexpected result %+v", result)
	}

	stdout, _, err = env.run(t, "search", "zzz")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, stdout, `No media matching "zzz"`)
}
