package tenant

import (
	"log/slog"
	"net/http"
)

// Middleware resolves the tenant identifier from incoming requests and
// binds it to the request context before any repository call executes.
//
// A request without a tenant signal proceeds as the default tenant; that
// is a documented default, not an error. Binding lives on the request
// context, so it cannot leak between requests: the context is discarded
// on every exit path, including panics.
func Middleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r)
			if err != nil {
				log.ErrorContext(r.Context(), "tenant resolution failed",
					"error", err, "path", r.URL.Path)
				http.Error(w, "unable to resolve tenant", http.StatusBadRequest)
				return
			}

			if id != "" && !ValidID(id) {
				log.WarnContext(r.Context(), "rejected malformed tenant identifier",
					"error", ErrInvalidIdentifier, "path", r.URL.Path)
				http.Error(w, ErrInvalidIdentifier.Error(), http.StatusBadRequest)
				return
			}

			if id == "" {
				log.DebugContext(r.Context(), "no tenant signal on request, using default",
					"tenant_id", Default(), "path", r.URL.Path)
			}

			ctx := WithID(r.Context(), id)
			log.DebugContext(ctx, "tenant bound to request", LogAttr(ctx), "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
