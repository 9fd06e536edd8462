package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	parsed, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("server.url must use http or https, got %q", c.Server.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server.url must include a host, got %q", c.Server.URL)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	return ensurePositiveMap(map[string]int{
		"sync.poll_interval":      c.Sync.PollInterval,
		"sync.reconnect_interval": c.Sync.ReconnectInterval,
		"sync.request_timeout":    c.Sync.RequestTimeout,
		"sync.failure_threshold":  c.Sync.FailureThreshold,
	})
}

func (c *Config) validateLogging() error {
	for key, format := range map[string]string{
		"logging.format":      c.Logging.Format,
		"logging.file_format": c.Logging.FileFormat,
	} {
		switch format {
		case "console", "json":
		default:
			return fmt.Errorf("%s must be console or json, got %q", key, format)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.File != "" {
		if err := ensurePositiveMap(map[string]int{
			"logging.max_size_mb": c.Logging.MaxSizeMB,
		}); err != nil {
			return err
		}
		if c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
			return errors.New("logging.max_backups and logging.max_age_days must be zero or positive")
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
