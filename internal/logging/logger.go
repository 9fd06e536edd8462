package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"trailarr/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	Output      io.Writer
	Development bool

	// File, when set, receives a second copy of every record in FileFormat,
	// rotated by size.
	File       string
	FileFormat string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New constructs a slog logger using the provided options. The returned close
// function flushes and releases the log file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	primary, err := newHandler(opts.Format, out, levelVar, addSource)
	if err != nil {
		return nil, nil, err
	}

	path := strings.TrimSpace(opts.File)
	if path == "" {
		return slog.New(primary), func() error { return nil }, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	fileFormat := opts.FileFormat
	if strings.TrimSpace(fileFormat) == "" {
		fileFormat = "json"
	}
	secondary, err := newHandler(fileFormat, rotator, levelVar, true)
	if err != nil {
		_ = rotator.Close()
		return nil, nil, err
	}
	return slog.New(TeeHandler(primary, secondary)), rotator.Close, nil
}

// NewFromConfig creates a logger using application config values.
func NewFromConfig(cfg *config.Config, out io.Writer) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Output: out})
	}
	return New(Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     out,
		File:       cfg.Logging.File,
		FileFormat: cfg.Logging.FileFormat,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
}

func newHandler(format string, w io.Writer, lvl *slog.LevelVar, addSource bool) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return newJSONHandler(w, lvl, addSource), nil
	case "console", "":
		return newPrettyHandler(w, lvl, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", format)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
