package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"trailarr/internal/config"
)

var (
	// ErrDisabled is returned by Open when the cache is switched off.
	ErrDisabled = errors.New("cache disabled")
	// ErrCacheBusy is returned by Clear while a watch session holds the cache.
	ErrCacheBusy = errors.New("cache in use by a running session")
)

// Store holds resource snapshots in SQLite.
type Store struct {
	db       *sql.DB
	path     string
	lockPath string
	now      func() time.Time
}

// Open initializes or connects to the cache database at cfg.Cache.Path.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || !cfg.Cache.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Cache.Path)
}

// OpenPath opens the cache database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer per process; concurrent CLI invocations coordinate
	// through the WAL and busy_timeout.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: dbPath, lockPath: dbPath + ".lock", now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open cache %s: %w", dbPath, err)
	}
	return store, nil
}

// sqliteDSN passes the connection pragmas as driver _pragma parameters.
func sqliteDSN(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return dbPath + "?" + q.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Session marks the cache as in use until release is called. Any number of
// sessions may run at once; Clear fails while one is open.
func (s *Store) Session() (release func() error, err error) {
	lock := flock.New(s.lockPath)
	ok, err := lock.TryRLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache session lock: %w", err)
	}
	if !ok {
		return nil, ErrCacheBusy
	}
	return lock.Unlock, nil
}

// withExclusive runs fn while holding the cache lock exclusively.
func (s *Store) withExclusive(fn func() error) error {
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return ErrCacheBusy
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}
