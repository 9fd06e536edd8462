package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr is one structured field on a record.
type Attr = slog.Attr

const (
	// FieldRoute names the backend API route a request went to.
	FieldRoute = "route"
	// FieldResource names a cached snapshot.
	FieldResource = "resource"
	FieldStatus   = "status"
	FieldElapsed  = "elapsed"
	// FieldFailures counts consecutive failed polls.
	FieldFailures = "consecutive_failures"
)

const defaultImpact = "displayed data may be stale"

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under the "error" key. A nil error is written as "<nil>"
// so the field is never silently missing.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Route(route string) Attr { return slog.String(FieldRoute, route) }

func Resource(name string) Attr { return slog.String(FieldResource, name) }

func Topic(topic string) Attr { return slog.String(FieldTopic, topic) }

func Subscription(id string) Attr { return slog.String(FieldSubscriptionID, id) }

func HTTPStatus(code int) Attr { return slog.Int(FieldStatus, code) }

func Elapsed(since time.Time) Attr {
	return slog.Duration(FieldElapsed, time.Since(since).Round(time.Millisecond))
}

func Failures(n int) Attr { return slog.Int(FieldFailures, n) }

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext writes a WARN record that always carries event_type and
// impact. Values already present in attrs win.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	var haveEvent, haveImpact bool
	args := make([]any, 0, len(attrs)+2)
	for _, a := range attrs {
		switch a.Key {
		case FieldEventType:
			haveEvent = true
		case FieldImpact:
			haveImpact = true
		}
		args = append(args, a)
	}
	if !haveEvent {
		args = append(args, slog.String(FieldEventType, eventType))
	}
	if !haveImpact {
		args = append(args, slog.String(FieldImpact, defaultImpact))
	}
	logger.Warn(msg, args...)
}

// NoopHandler discards every record.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h NoopHandler) WithGroup(string) slog.Handler { return h }
