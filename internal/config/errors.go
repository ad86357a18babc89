package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into the target struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
