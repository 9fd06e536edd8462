package services_test

import (
	"errors"
	"strings"
	"testing"

	"trailarr/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrTransport, "backend", "GET /api/movies", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"backend", "GET /api/movies", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want services.Class
	}{
		{nil, services.ClassNone},
		{services.Wrap(services.ErrMalformed, "api", "decode", "", nil), services.ClassMalformed},
		{services.Wrap(services.ErrApplication, "backend", "", "500", nil), services.ClassApplication},
		{services.Wrap(services.ErrNotFound, "backend", "", "", nil), services.ClassApplication},
		{services.Wrap(services.ErrValidation, "cli", "", "", nil), services.ClassInvalid},
		{errors.New("dial tcp: refused"), services.ClassTransport},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
