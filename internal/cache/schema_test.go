package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"trailarr/internal/services"
)

func TestNewerSchemaIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if _, err := store.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1)); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOlderSchemaIsRebuilt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.Put(t.Context(), ResourceTasks, []string{"stale"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("reset version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	var got []string
	if _, err := store.Get(t.Context(), ResourceTasks, &got); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected rebuilt cache to be empty, got %v (%v)", got, err)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	want := errors.New("boom")
	err := retryOnBusy(t.Context(), func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryOnBusy(t.Context(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}
