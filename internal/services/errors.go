package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures reaching the backend (refused, reset, DNS, timeout).
	ErrTransport = errors.New("transport failure")
	// ErrApplication marks requests the backend answered with an error.
	ErrApplication = errors.New("application error")
	// ErrMalformed marks payloads that could not be normalized.
	ErrMalformed     = errors.New("malformed payload")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Class is the coarse failure category reported to users.
type Class string

const (
	ClassNone        Class = ""
	ClassTransport   Class = "transport"
	ClassApplication Class = "application"
	ClassMalformed   Class = "malformed"
	ClassInvalid     Class = "invalid"
)

// Classify maps an error to the category that decides how callers react:
// transport failures fall back to polling or the cache, application failures
// are shown to the user, malformed payloads are dropped.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrMalformed):
		return ClassMalformed
	case errors.Is(err, ErrApplication), errors.Is(err, ErrNotFound):
		return ClassApplication
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return ClassInvalid
	default:
		return ClassTransport
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
