package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trailarr/internal/config"
	"trailarr/internal/logging"
	"trailarr/internal/services"
)

func TestConsoleLoggerFormatsComponentAndTopic(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeFn()

	ctx := services.WithTopic(context.Background(), "tasks")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "livesync"))
	log.Info("channel open", logging.Int("attempt", 2), logging.String("note", "two words"))

	line := buf.String()
	for _, want := range []string{"INFO", "livesync [tasks]: channel open", "attempt=2", `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no source location at info level, got %q", line)
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDebugConsoleIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("payload dropped")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected source location in debug output, got %q", buf.String())
	}
}

func TestJSONLoggerShape(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-1")
	logging.WithContext(ctx, logger).Error("request failed", logging.Error(errors.New("boom")))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if record["level"] != "error" || record["msg"] != "request failed" {
		t.Fatalf("unexpected record %v", record)
	}
	if record[logging.FieldCorrelationID] != "req-1" || record["error"] != "boom" {
		t.Fatalf("expected correlation id and error, got %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNewFromConfigWritesRotatingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "trailarr.log")

	var console bytes.Buffer
	logger, closeFn, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("cache refreshed", logging.String("resource", "movies"))
	if err := closeFn(); err != nil {
		t.Fatalf("close log file: %v", err)
	}

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"resource":"movies"`) {
		t.Fatalf("expected json record in log file, got %q", content)
	}
	if !strings.Contains(console.String(), "cache refreshed") {
		t.Fatalf("expected console copy, got %q", console.String())
	}
}

func TestTeeHandlerRespectsChildLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := logging.TeeHandler(
		nil,
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("key", "value")
	logger.Debug("debug only")

	if infoBuf.Len() != 0 {
		t.Fatal("info handler should not receive debug messages")
	}
	if !bytes.Contains(debugBuf.Bytes(), []byte(`"key":"value"`)) {
		t.Fatalf("expected attrs in debug handler, got %q", debugBuf.String())
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := logging.TeeHandler(nil, nil).(logging.NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if logging.TeeHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := logging.New(logging.Options{Format: "json", Output: &buf})
	logging.WarnWithContext(logger, "poll failing", "poll_failure", logging.Failures(3))
	if !strings.Contains(buf.String(), `"event_type":"poll_failure"`) || !strings.Contains(buf.String(), `"impact"`) {
		t.Fatalf("expected injected fields, got %q", buf.String())
	}
}

func TestWarnWithContextKeepsCallerImpact(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := logging.New(logging.Options{Format: "json", Output: &buf})
	logging.WarnWithContext(logger, "cache fallback", "cache_fallback",
		logging.Resource("movies"),
		logging.String(logging.FieldImpact, "list is from cache"),
	)
	out := buf.String()
	if strings.Count(out, `"impact"`) != 1 || !strings.Contains(out, `"impact":"list is from cache"`) {
		t.Fatalf("expected caller impact only, got %q", out)
	}
	if !strings.Contains(out, `"resource":"movies"`) {
		t.Fatalf("missing resource field in %q", out)
	}
}
