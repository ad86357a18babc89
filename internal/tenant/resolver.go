package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no tenant identifier is found.
	// Returns error if the extraction fails.
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	// HeaderName is the name of the header to read (e.g., "X-Tenant-ID")
	HeaderName string
}

// NewHeaderResolver creates a new header resolver.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve extracts the tenant from the configured header.
func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return strings.TrimSpace(req.Header.Get(r.HeaderName)), nil
}

// PathResolver extracts the tenant identifier from a URL path segment.
type PathResolver struct {
	// Position is the 1-based position in the path (e.g., 2 for /tenants/{id}/...)
	Position int
}

// NewPathResolver creates a new path resolver.
func NewPathResolver(position int) *PathResolver {
	return &PathResolver{Position: position}
}

// Resolve extracts the tenant from the specified path position.
func (r *PathResolver) Resolve(req *http.Request) (string, error) {
	if r.Position < 1 {
		return "", fmt.Errorf("%w: path position %d", ErrResolveFailed, r.Position)
	}

	path := strings.TrimPrefix(req.URL.Path, "/")
	path = strings.TrimSuffix(path, "/")

	if path == "" {
		return "", nil
	}

	parts := strings.Split(path, "/")
	if r.Position > len(parts) {
		return "", nil
	}

	return strings.TrimSpace(parts[r.Position-1]), nil
}

// CompositeResolver tries multiple resolvers in order until one succeeds.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order, returning the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %w", ErrResolveFailed, errors.Join(errs...))
	}

	return "", nil
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}
