package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single-resource fetch hits a 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized is returned on 401/403 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries the backend's rejection of a mutating call,
// e.g. a duplicate or empty name.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("validation failed (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("validation failed (%d)", e.Status)
}

// StatusError reports an unexpected backend status outside the taxonomy above.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Status)
}
