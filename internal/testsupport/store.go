package testsupport

import (
	"testing"

	"trailarr/internal/cache"
	"trailarr/internal/config"
)

// MustOpenCache opens the snapshot cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
