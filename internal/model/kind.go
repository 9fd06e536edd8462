package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes movies from series.
type Kind uint8

const (
	KindUnknown Kind = iota
	Movie
	Series
)

// ErrUnknownKind reports a media kind outside the closed set.
var ErrUnknownKind = errors.New("unknown media kind")

// ParseKind accepts the names the backend and the CLI use for each kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies", "film":
		return Movie, nil
	case "tv", "series", "show", "shows":
		return Series, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// MatchKind calls the handler for k. Both handlers are required so every
// caller covers every kind.
func MatchKind[T any](k Kind, movie, series func() T) (T, error) {
	switch k {
	case Movie:
		return movie(), nil
	case Series:
		return series(), nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
}

// kindLabel resolves a per-kind name, or "" for an invalid kind.
func kindLabel(k Kind, movie, series string) string {
	label, _ := MatchKind(k, func() string { return movie }, func() string { return series })
	return label
}

func (k Kind) Valid() bool {
	return kindLabel(k, "movie", "series") != ""
}

func (k Kind) String() string {
	if label := kindLabel(k, "movie", "series"); label != "" {
		return label
	}
	return "unknown"
}

// APIValue is the mediaType discriminator the backend expects in request bodies.
func (k Kind) APIValue() string {
	return kindLabel(k, "movie", "tv")
}

// PathSegment is the REST collection name for the kind.
func (k Kind) PathSegment() string {
	return kindLabel(k, "movies", "series")
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts every ParseKind spelling plus "unknown" for the zero kind.
func (k *Kind) UnmarshalText(text []byte) error {
	if raw := strings.TrimSpace(string(text)); raw == "" || raw == "unknown" {
		*k = KindUnknown
		return nil
	}
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
