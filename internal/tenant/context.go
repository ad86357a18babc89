package tenant

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
)

// DefaultID is the well-known tenant identifier used when multi-tenancy
// is disabled or no tenant is resolved from a request.
const DefaultID = "default"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// idValue distinguishes "explicitly cleared" from "never set": a cleared
// context carries an empty idValue, an untouched context carries none.
type idValue struct {
	id string
}

var defaultID atomic.Value

func init() {
	defaultID.Store(DefaultID)
}

// SetDefault configures the process-wide default tenant identifier.
// Blank input keeps the built-in default.
func SetDefault(id string) {
	if id = strings.TrimSpace(id); id != "" {
		defaultID.Store(id)
	}
}

// Default returns the configured default tenant identifier.
func Default() string {
	return defaultID.Load().(string)
}

// WithID returns a context carrying the given tenant identifier.
// Blank or whitespace-only input normalizes to the default identifier
// rather than erroring, so callers can pass request input verbatim.
func WithID(ctx context.Context, id string) context.Context {
	if id = strings.TrimSpace(id); id == "" {
		id = Default()
	}
	return context.WithValue(ctx, contextKey{}, idValue{id: id})
}

// CurrentID returns the tenant identifier bound to the context. It never
// fails: an unset or cleared context yields the default identifier.
func CurrentID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(idValue); ok && v.id != "" {
		return v.id
	}
	return Default()
}

// HasID reports whether the context carries an explicit tenant identifier.
func HasID(ctx context.Context) bool {
	v, ok := ctx.Value(contextKey{}).(idValue)
	return ok && v.id != ""
}

// Clear returns a context without a tenant binding. Clearing an already
// clear context is safe; subsequent CurrentID calls yield the default.
// Request scoping normally makes this unnecessary (the request context
// dies with the request), but explicit units of work outside a request
// must pair WithID and Clear on every exit path.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, idValue{})
}

// LogAttr returns a slog attribute for the context's tenant, for
// consistent structured log decoration.
func LogAttr(ctx context.Context) slog.Attr {
	return slog.String("tenant_id", CurrentID(ctx))
}

// Identifiers feed property keys, per-tenant file names, and environment
// variable names, so the character set is restricted. A dot in particular
// would break the per-tenant property namespace.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidID reports whether id is a well-formed tenant identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
