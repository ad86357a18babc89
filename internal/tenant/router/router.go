// Package router maps the current tenant identity to the physical
// database connection pool every repository call runs against.
//
// The registry is read on every database operation from any request
// goroutine and written only at startup and from the configuration
// refresh path, so it is guarded by a read-write lock: a request must
// never observe a partially-updated entry or a torn removal.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"uidam/internal/pg"
	"uidam/internal/tenant"
	"uidam/internal/tenant/profile"
)

// PoolFactory builds a connection pool from resolved datasource
// properties. The default factory opens a pgx pool; tests substitute
// in-memory fakes.
type PoolFactory func(ctx context.Context, p profile.DatabaseProperties) (pg.DB, error)

func defaultFactory(ctx context.Context, p profile.DatabaseProperties) (pg.DB, error) {
	pool, err := pg.Connect(ctx, p)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Router routes every database operation to the datasource matching the
// current tenant.
type Router struct {
	resolver *profile.Resolver
	factory  PoolFactory
	log      *slog.Logger

	mu        sync.RWMutex
	pools     map[string]pg.DB
	defaultID string
}

// Option configures a Router.
type Option func(*Router)

// WithPoolFactory overrides pool construction.
func WithPoolFactory(f PoolFactory) Option {
	return func(r *Router) { r.factory = f }
}

// WithLogger sets the router's logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) { r.log = log }
}

// New creates an empty router; call Build before serving traffic.
func New(resolver *profile.Resolver, opts ...Option) *Router {
	r := &Router{
		resolver: resolver,
		factory:  defaultFactory,
		log:      slog.Default(),
		pools:    make(map[string]pg.DB),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build constructs one connection pool per active tenant and designates
// the default entry: the default tenant id when present in the
// registry, else the first successfully configured tenant.
//
// Missing required datasource properties are a configuration error and
// abort the build, naming exactly which fields are missing for which
// tenant. A pool that fails to open is logged and skipped so one broken
// tenant database does not take down the others, but zero successfully
// configured tenants fails the entire startup.
func (r *Router) Build(ctx context.Context, tenantIDs []string, defaultTenant string) error {
	pools := make(map[string]pg.DB, len(tenantIDs))
	order := make([]string, 0, len(tenantIDs))

	for _, id := range tenantIDs {
		props := r.resolver.Database(id)
		if missing := props.MissingFields(); len(missing) > 0 {
			closeAll(pools)
			return fmt.Errorf("%w: tenant %q is missing required datasource properties %v",
				ErrIncompleteDatasource, id, missing)
		}

		pool, err := r.factory(ctx, props)
		if err != nil {
			r.log.ErrorContext(ctx, "failed to build tenant datasource",
				"tenant_id", id, "pool_name", props.PoolName, "error", err)
			continue
		}

		pools[id] = pool
		order = append(order, id)
	}

	if len(pools) == 0 {
		return ErrNoTenantsConfigured
	}

	defaultID := defaultTenant
	if _, ok := pools[defaultID]; !ok {
		defaultID = order[0]
		r.log.WarnContext(ctx, "default tenant has no datasource, designating first configured tenant",
			"default_tenant", defaultTenant, "designated", defaultID)
	}

	r.mu.Lock()
	old := r.pools
	r.pools = pools
	r.defaultID = defaultID
	r.mu.Unlock()

	go closeAll(old)

	r.log.InfoContext(ctx, "datasource router built",
		"tenants", order, "default_tenant", defaultID)
	return nil
}

// CurrentPool resolves the datasource for the tenant bound to the
// context. An unset tenant context falls back to the default tenant and
// is logged, not failed; a tenant explicitly bound but absent from the
// registry is a hard error so a request can never silently run against
// another tenant's database.
func (r *Router) CurrentPool(ctx context.Context) (pg.DB, error) {
	if !tenant.HasID(ctx) {
		r.log.DebugContext(ctx, "no tenant bound to context, routing to default",
			"tenant_id", tenant.Default())
	}
	return r.Pool(tenant.CurrentID(ctx))
}

// Pool returns the registered datasource for a tenant id, failing
// closed when none exists.
func (r *Router) Pool(id string) (pg.DB, error) {
	r.mu.RLock()
	pool, ok := r.pools[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: tenant %q", ErrDatasourceNotFound, id)
	}
	return pool, nil
}

// Default returns the designated default datasource.
func (r *Router) Default() (pg.DB, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[r.defaultID]
	return pool, ok
}

// DefaultTenant returns the id of the designated default entry.
func (r *Router) DefaultTenant() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// Tenants returns the ids currently present in the registry.
func (r *Router) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	return ids
}

// AddOrUpdate builds or replaces a tenant's pool. The swap is atomic
// from the registry's perspective: in-flight requests keep the pool
// they already resolved, subsequent lookups see the new one. The old
// pool is closed in the background once its connections are released.
func (r *Router) AddOrUpdate(ctx context.Context, id string, props profile.DatabaseProperties) error {
	if missing := props.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: tenant %q is missing required datasource properties %v",
			ErrIncompleteDatasource, id, missing)
	}

	pool, err := r.factory(ctx, props)
	if err != nil {
		return fmt.Errorf("build datasource for tenant %q: %w", id, err)
	}

	r.mu.Lock()
	old := r.pools[id]
	r.pools[id] = pool
	r.mu.Unlock()

	if old != nil {
		go old.Close()
	}

	r.log.InfoContext(ctx, "tenant datasource added or updated",
		"tenant_id", id, "pool_name", props.PoolName)
	return nil
}

// Remove tears down a tenant's pool. Subsequent lookups for the id fail
// closed; there is no silent fallback to the default entry.
func (r *Router) Remove(id string) {
	r.mu.Lock()
	old := r.pools[id]
	delete(r.pools, id)
	r.mu.Unlock()

	if old != nil {
		go old.Close()
	}

	r.log.Info("tenant datasource removed", "tenant_id", id)
}

// Close tears down every pool in the registry.
func (r *Router) Close() {
	r.mu.Lock()
	old := r.pools
	r.pools = make(map[string]pg.DB)
	r.mu.Unlock()

	closeAll(old)
}

func closeAll(pools map[string]pg.DB) {
	for _, p := range pools {
		p.Close()
	}
}
