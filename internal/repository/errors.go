package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned on unique-constraint violations, e.g.
	// reusing an email or user name within a tenant.
	ErrDuplicate = errors.New("record already exists")
)
