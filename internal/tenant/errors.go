package tenant

import "errors"

var (
	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrResolveFailed is returned when a resolver cannot inspect the request.
	ErrResolveFailed = errors.New("failed to resolve tenant from request")
)
