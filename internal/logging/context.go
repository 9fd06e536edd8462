package logging

import (
	"context"
	"log/slog"

	"trailarr/internal/services"
)

// Keys shared by every handler. The console handler lifts component and
// topic into the line prefix.
const (
	FieldComponent      = "component"
	FieldCorrelationID  = "correlation_id"
	FieldTopic          = "topic"
	FieldSubscriptionID = "subscription_id"
	// FieldEventType classifies WARN records for filtering.
	FieldEventType = "event_type"
	// FieldImpact says what a warning means for the user.
	FieldImpact = "impact"
)

// contextFields maps log keys to the context lookups that fill them.
var contextFields = []struct {
	key    string
	lookup func(context.Context) (string, bool)
}{
	{FieldTopic, services.TopicFromContext},
	{FieldSubscriptionID, services.SubscriptionIDFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the correlation attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, f := range contextFields {
		if v, ok := f.lookup(ctx); ok {
			fields = append(fields, slog.String(f.key, v))
		}
	}
	return fields
}

// WithContext returns logger with the correlation attributes of ctx added.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
