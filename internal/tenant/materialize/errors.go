package materialize

import "errors"

var (
	// ErrDefaultTenantInvalid aborts the whole materialization pass:
	// without a valid default profile there is nothing to inherit from.
	ErrDefaultTenantInvalid = errors.New("default tenant configuration is invalid")
)
