package profile

import "errors"

var (
	// ErrProfileNotFound is returned when no configuration exists for a tenant.
	ErrProfileNotFound = errors.New("tenant profile not found")
)
