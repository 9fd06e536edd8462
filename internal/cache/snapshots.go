package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"trailarr/internal/model"
	"trailarr/internal/services"
)

// Resource names.
const (
	ResourceBlacklist = "blacklist"
	ResourceTasks     = "tasks"
	ResourceQueue     = "queue"
)

// MediaResource names the catalog snapshot of one kind.
func MediaResource(kind model.Kind) string {
	return kind.PathSegment()
}

// ExtrasResource names the extras snapshot of one media item.
func ExtrasResource(kind model.Kind, mediaID int) string {
	return "extras:" + kind.String() + ":" + strconv.Itoa(mediaID)
}

// Entry describes one stored snapshot.
type Entry struct {
	Resource  string    `json:"resource"`
	FetchedAt time.Time `json:"fetchedAt"`
	Bytes     int       `json:"bytes"`
}

// Put stores value as the latest snapshot of resource.
func (s *Store) Put(ctx context.Context, resource string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", resource, err)
	}
	fetchedAt := s.now().UTC().Format(time.RFC3339Nano)
	_, err = s.execWithRetry(ctx,
		`INSERT INTO snapshots (resource, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(resource) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		resource, payload, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("store %s snapshot: %w", resource, err)
	}
	return nil
}

// Get decodes the snapshot of resource into dst and returns when it was
// fetched. A missing snapshot wraps services.ErrNotFound.
func (s *Store) Get(ctx context.Context, resource string, dst any) (time.Time, error) {
	ctx = ensureContext(ctx)
	var (
		payload   []byte
		fetchedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT payload, fetched_at FROM snapshots WHERE resource = ?`, resource,
		).Scan(&payload, &fetchedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, services.Wrap(services.ErrNotFound, "cache", "get", resource+" has no snapshot", nil)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load %s snapshot: %w", resource, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return time.Time{}, services.Wrap(services.ErrMalformed, "cache", "get", resource, err)
	}
	at, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return time.Time{}, services.Wrap(services.ErrMalformed, "cache", "get", resource+" fetch time", err)
	}
	return at, nil
}

// List describes every stored snapshot, ordered by resource name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource, fetched_at, length(payload) FROM snapshots ORDER BY resource`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			fetchedAt string
		)
		if err := rows.Scan(&entry.Resource, &fetchedAt, &entry.Bytes); err != nil {
			return nil, err
		}
		entry.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes every snapshot and returns how many were removed. It fails
// with ErrCacheBusy while a session is open.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := s.withExclusive(func() error {
		res, err := s.execWithRetry(ctx, `DELETE FROM snapshots`)
		if err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return removed, err
}
