package testsupport

import (
	"path/filepath"
	"testing"

	"trailarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp cache per test and
// sync timings short enough for tests. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.URL = "http://127.0.0.1:1"
	cfgVal.Server.RequestTimeout = 5
	cfgVal.Sync.PollInterval = 1
	cfgVal.Sync.ReconnectInterval = 1
	cfgVal.Sync.RequestTimeout = 2
	cfgVal.Cache.Path = filepath.Join(base, "cache", "cache.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServerURL points the test config at a backend, usually a FakeBackend.
func WithServerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.URL = url
	}
}

// WithCacheDisabled turns the offline cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithLogFile routes a rotating log file into the test directory.
func WithLogFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.File = filepath.Join(b.baseDir, "logs", "trailarr.log")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Cache.Path))
}
