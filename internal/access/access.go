// Package access answers read requests from the backend first and from the
// snapshot cache when the backend cannot be reached.
package access

import (
	"context"
	"log/slog"
	"time"

	"trailarr/internal/backend"
	"trailarr/internal/cache"
	"trailarr/internal/logging"
	"trailarr/internal/model"
)

// Provenance tells the caller where a result came from.
type Provenance struct {
	// Offline is set when the result was served from the cache.
	Offline   bool
	FetchedAt time.Time
}

// Result is a list read plus its provenance.
type Result[T any] struct {
	Items []T
	Provenance
}

// Access provides the read operations of the CLI regardless of whether the
// backend or the cache answers them.
type Access interface {
	Media(ctx context.Context, kind model.Kind) (Result[model.Media], error)
	Extras(ctx context.Context, kind model.Kind, mediaID int) (Result[model.Extra], error)
	Blacklist(ctx context.Context) (Result[model.BlacklistEntry], error)
	Tasks(ctx context.Context) (Result[model.TaskSchedule], error)
	Queue(ctx context.Context) (Result[model.QueueEntry], error)
}

// Reader is the backend surface Access reads through.
type Reader interface {
	Media(ctx context.Context, kind model.Kind) ([]model.Media, error)
	Extras(ctx context.Context, kind model.Kind, mediaID int) ([]model.Extra, error)
	Blacklist(ctx context.Context) ([]model.BlacklistEntry, error)
	Tasks(ctx context.Context) ([]model.TaskSchedule, error)
	Queue(ctx context.Context) ([]model.QueueEntry, error)
}

// NewAPIAccess returns an Access backed by the backend. Successful reads are
// written to store; reads that fail because the backend is unreachable are
// answered from it. A nil store disables both.
func NewAPIAccess(reader Reader, store *cache.Store, logger *slog.Logger) Access {
	return &apiAccess{
		reader: reader,
		store:  store,
		logger: logging.NewComponentLogger(logger, "access"),
		now:    time.Now,
	}
}

// NewCacheAccess returns an Access that only reads the cache.
func NewCacheAccess(store *cache.Store) Access {
	return &cacheAccess{store: store}
}

type apiAccess struct {
	reader Reader
	store  *cache.Store
	logger *slog.Logger
	now    func() time.Time
}

func readThrough[T any](ctx context.Context, a *apiAccess, resource string, fetch func(context.Context) ([]T, error)) (Result[T], error) {
	items, err := fetch(ctx)
	if err == nil {
		if a.store != nil {
			if putErr := a.store.Put(ctx, resource, items); putErr != nil {
				a.logger.Debug("cache write failed", logging.Resource(resource), logging.Error(putErr))
			}
		}
		return Result[T]{Items: items, Provenance: Provenance{FetchedAt: a.now()}}, nil
	}
	if a.store == nil || !backend.IsUnavailable(err) {
		return Result[T]{}, err
	}

	var cached []T
	fetchedAt, cacheErr := a.store.Get(ctx, resource, &cached)
	if cacheErr != nil {
		a.logger.Debug("no cached snapshot", logging.Resource(resource), logging.Error(cacheErr))
		return Result[T]{}, err
	}
	logging.WarnWithContext(a.logger, "backend unavailable; serving cached snapshot", "cache_fallback",
		logging.Resource(resource),
		logging.String("fetched_at", fetchedAt.Format(time.RFC3339)),
		logging.Error(err),
	)
	return Result[T]{Items: cached, Provenance: Provenance{Offline: true, FetchedAt: fetchedAt}}, nil
}

func (a *apiAccess) Media(ctx context.Context, kind model.Kind) (Result[model.Media], error) {
	return readThrough(ctx, a, cache.MediaResource(kind), func(ctx context.Context) ([]model.Media, error) {
		return a.reader.Media(ctx, kind)
	})
}

func (a *apiAccess) Extras(ctx context.Context, kind model.Kind, mediaID int) (Result[model.Extra], error) {
	return readThrough(ctx, a, cache.ExtrasResource(kind, mediaID), func(ctx context.Context) ([]model.Extra, error) {
		return a.reader.Extras(ctx, kind, mediaID)
	})
}

func (a *apiAccess) Blacklist(ctx context.Context) (Result[model.BlacklistEntry], error) {
	return readThrough(ctx, a, cache.ResourceBlacklist, a.reader.Blacklist)
}

func (a *apiAccess) Tasks(ctx context.Context) (Result[model.TaskSchedule], error) {
	return readThrough(ctx, a, cache.ResourceTasks, a.reader.Tasks)
}

func (a *apiAccess) Queue(ctx context.Context) (Result[model.QueueEntry], error) {
	return readThrough(ctx, a, cache.ResourceQueue, a.reader.Queue)
}

type cacheAccess struct {
	store *cache.Store
}

func readCached[T any](ctx context.Context, store *cache.Store, resource string) (Result[T], error) {
	var items []T
	fetchedAt, err := store.Get(ctx, resource, &items)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Items: items, Provenance: Provenance{Offline: true, FetchedAt: fetchedAt}}, nil
}

func (a *cacheAccess) Media(ctx context.Context, kind model.Kind) (Result[model.Media], error) {
	return readCached[model.Media](ctx, a.store, cache.MediaResource(kind))
}

func (a *cacheAccess) Extras(ctx context.Context, kind model.Kind, mediaID int) (Result[model.Extra], error) {
	return readCached[model.Extra](ctx, a.store, cache.ExtrasResource(kind, mediaID))
}

func (a *cacheAccess) Blacklist(ctx context.Context) (Result[model.BlacklistEntry], error) {
	return readCached[model.BlacklistEntry](ctx, a.store, cache.ResourceBlacklist)
}

func (a *cacheAccess) Tasks(ctx context.Context) (Result[model.TaskSchedule], error) {
	return readCached[model.TaskSchedule](ctx, a.store, cache.ResourceTasks)
}

func (a *cacheAccess) Queue(ctx context.Context) (Result[model.QueueEntry], error) {
	return readCached[model.QueueEntry](ctx, a.store, cache.ResourceQueue)
}
