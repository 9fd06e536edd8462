package access

import (
	"errors"
	"fmt"
	"log/slog"

	"trailarr/internal/cache"
	"trailarr/internal/logging"
)

// Session is an Access handle and its cleanup function.
type Session struct {
	Access Access
	// Store is the cache behind Access, nil when caching is disabled.
	Store *cache.Store
	close func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open returns backend-first access with cache fallback. When offline is set
// only the cache is read. A disabled cache leaves backend-only access.
func Open(reader Reader, openStore func() (*cache.Store, error), offline bool, logger *slog.Logger) (Session, error) {
	var store *cache.Store
	if openStore != nil {
		opened, err := openStore()
		switch {
		case err == nil:
			store = opened
		case errors.Is(err, cache.ErrDisabled):
		default:
			if offline {
				return Session{}, fmt.Errorf("open cache: %w", err)
			}
			logging.NewComponentLogger(logger, "access").Debug("cache unavailable; continuing without it", logging.Error(err))
		}
	}

	if offline {
		if store == nil {
			return Session{}, fmt.Errorf("open cache: %w", cache.ErrDisabled)
		}
		return Session{Access: NewCacheAccess(store), Store: store, close: store.Close}, nil
	}
	session := Session{Access: NewAPIAccess(reader, store, logger), Store: store}
	if store != nil {
		session.close = store.Close
	}
	return session, nil
}
