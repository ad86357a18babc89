package service

// ValidationError carries field-level validation failures, keyed by
// field name. It maps to a 422 response at the API layer.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	return "validation failed"
}

// add appends a failure message for a field.
func (e ValidationError) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// orNil returns nil when no failures were collected, so callers can
// return the result directly.
func (e ValidationError) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
