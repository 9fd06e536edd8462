package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/backend"
	"trailarr/internal/cache"
	"trailarr/internal/config"
	"trailarr/internal/logging"
)

type globalFlags struct {
	config   string
	url      string
	logLevel string
	json     bool
	offline  bool
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	logger   *slog.Logger
	closeLog func() error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once, applies flag overrides, and
// builds the logger. Logs go to the command's stderr.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if url := strings.TrimRight(strings.TrimSpace(c.flags.url), "/"); url != "" {
			cfg.Server.URL = url
		}
		if level := strings.ToLower(strings.TrimSpace(c.flags.logLevel)); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		logger, closeLog, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
		if err != nil {
			c.configErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
		c.logger = logger
		c.closeLog = closeLog
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	return c.config
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

func (c *commandContext) close() error {
	if c.closeLog == nil {
		return nil
	}
	closeLog := c.closeLog
	c.closeLog = nil
	return closeLog()
}

// backendClient builds a REST client for the configured server. A non-nil
// observer receives per-request metrics.
func (c *commandContext) backendClient(observer backend.RequestObserver) (*backend.Client, error) {
	cfg := c.configValue()
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	opts := []backend.Option{backend.WithLogger(c.log())}
	if observer != nil {
		opts = append(opts, backend.WithObserver(observer))
	}
	return backend.New(cfg.Server.URL, cfg.RequestTimeout(), opts...)
}

// withClient runs fn against a backend client and rewrites connection
// failures into a hint about server.url.
func (c *commandContext) withClient(fn func(*backend.Client) error) error {
	client, err := c.backendClient(nil)
	if err != nil {
		return err
	}
	return c.wrapBackendError(fn(client))
}

// withAccess runs fn against backend-first access with cache fallback, or
// cache-only access when --offline is set.
func (c *commandContext) withAccess(fn func(access.Access) error) error {
	client, err := c.backendClient(nil)
	if err != nil {
		return err
	}
	cfg := c.configValue()
	session, err := access.Open(client, func() (*cache.Store, error) {
		return cache.Open(cfg)
	}, c.flags.offline, c.log())
	if err != nil {
		return err
	}
	defer session.Close()
	return c.wrapBackendError(fn(session.Access))
}

func (c *commandContext) wrapBackendError(err error) error {
	if err == nil {
		return nil
	}
	if backend.IsUnavailable(err) {
		url := ""
		if cfg := c.configValue(); cfg != nil {
			url = cfg.Server.URL
		}
		return fmt.Errorf("connect to backend: %s is unreachable; check server.url or pass --url: %w", url, err)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
