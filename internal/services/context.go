package services

import "context"

// contextKey scopes the correlation values this package stores on a context.
type contextKey uint8

const (
	requestIDKey contextKey = iota
	topicKey
	subscriptionIDKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRequestID tags ctx with the X-Request-ID sent to the backend. An empty
// id leaves ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

// WithTopic tags ctx with the push topic a synchronizer follows.
func WithTopic(ctx context.Context, topic string) context.Context {
	return withString(ctx, topicKey, topic)
}

func TopicFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, topicKey)
}

// WithSubscriptionID tags ctx with the id of one synchronizer instance. The
// id is stable across reconnects.
func WithSubscriptionID(ctx context.Context, id string) context.Context {
	return withString(ctx, subscriptionIDKey, id)
}

func SubscriptionIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, subscriptionIDKey)
}
