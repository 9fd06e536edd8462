package config

const (
	defaultConfigPath        = "~/.config/trailarr/config.toml"
	defaultServerURL         = "http://127.0.0.1:7889"
	defaultRequestTimeout    = 30
	defaultPollInterval      = 5
	defaultReconnectInterval = 15
	defaultPollTimeout       = 10
	defaultFailureThreshold  = 3
	defaultCacheEnabled      = true
	defaultCacheFile         = "~/.cache/trailarr/cache.db"
	defaultLogFormat         = "console"
	defaultLogFileFormat     = "json"
	defaultLogLevel          = "info"
	defaultLogMaxSizeMB      = 10
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			URL:            defaultServerURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Sync: Sync{
			PollInterval:      defaultPollInterval,
			ReconnectInterval: defaultReconnectInterval,
			RequestTimeout:    defaultPollTimeout,
			FailureThreshold:  defaultFailureThreshold,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			FileFormat: defaultLogFileFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
