package backend

import (
	"errors"
	"fmt"
	"net/http"

	"trailarr/internal/services"
)

// APIError is a request the backend answered with an error.
type APIError struct {
	Route   Route
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Route, e.Status)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Route, e.Status, e.Message)
}

func (e *APIError) Unwrap() []error {
	if e.Status == http.StatusNotFound {
		return []error{services.ErrApplication, services.ErrNotFound}
	}
	return []error{services.ErrApplication}
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, services.ErrTransport)
}

// AsAPIError extracts the backend error, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
