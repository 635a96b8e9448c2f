// Package sentinel defines infrastructure facts returned by caches and
// stores. Callers match them with errors.Is and translate them into coded
// domain errors at the service boundary.
package sentinel

import "errors"

var (
	// ErrNotFound is a cache miss, an expired entry or an absent record.
	ErrNotFound    = errors.New("not found")
	// ErrUnavailable means a backing service could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
