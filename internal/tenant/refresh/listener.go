// Package refresh reacts to runtime configuration-change events: it
// diffs changed keys against a cached snapshot, regenerates derived
// tenant properties, and adds and removes tenant datasources for
// tenants that appeared or disappeared, all without a process restart.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"uidam/internal/props"
	"uidam/internal/tenant/materialize"
	"uidam/internal/tenant/profile"
)

// Registry is the router surface the listener mutates.
type Registry interface {
	AddOrUpdate(ctx context.Context, id string, p profile.DatabaseProperties) error
	Remove(id string)
}

// Refresher regenerates derived tenant properties after membership changes.
type Refresher interface {
	RefreshTenantProperties(ids []string) ([]string, error)
}

// WatchedKeys are the system properties the listener snapshots and
// diffs on every change event.
var WatchedKeys = []string{
	props.KeyTenantIDs,
	props.KeyDefaultTenantID,
	props.KeyMultitenantEnabled,
}

// Listener consumes configuration-change events. It never propagates an
// error or panic out of HandleChange: every sub-step is isolated so one
// broken tenant cannot stop the rest of the batch.
type Listener struct {
	store        *props.Store
	resolver     *profile.Resolver
	registry     Registry
	materializer Refresher
	log          *slog.Logger
	lookupEnv    func(string) (string, bool)
	setEnv       func(key, value string) error

	mu       sync.Mutex
	snapshot map[string]string
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the listener's logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Listener) { l.log = log }
}

// WithEnvLookup overrides environment lookup, for tests.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(l *Listener) { l.lookupEnv = fn }
}

// WithEnvSetter overrides the system-property mirror writer, for tests.
func WithEnvSetter(fn func(key, value string) error) Option {
	return func(l *Listener) { l.setEnv = fn }
}

// New creates a listener. Call InitializePropertyCache once before the
// first event so diffs run against a consistent baseline.
func New(store *props.Store, resolver *profile.Resolver, registry Registry, materializer Refresher, opts ...Option) *Listener {
	l := &Listener{
		store:        store,
		resolver:     resolver,
		registry:     registry,
		materializer: materializer,
		log:          slog.Default(),
		lookupEnv:    os.LookupEnv,
		setEnv:       os.Setenv,
		snapshot:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InitializePropertyCache snapshots the watched property values.
func (l *Listener) InitializePropertyCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range WatchedKeys {
		l.snapshot[key], _ = l.store.Get(key)
	}
}

// HandleChange processes one configuration-change event carrying the
// set of changed property keys. Values are re-read from the store, not
// carried on the event. Removals and additions derived from a tenant.ids
// change are computed from one consistent before/after snapshot.
func (l *Listener) HandleChange(ctx context.Context, changedKeys []string) {
	defer func() {
		if p := recover(); p != nil {
			l.log.ErrorContext(ctx, "panic while handling configuration change", "panic", p)
		}
	}()

	if len(changedKeys) == 0 {
		l.log.InfoContext(ctx, "configuration change event carried no changes")
		return
	}

	l.mu.Lock()
	before := make(map[string]string, len(l.snapshot))
	for k, v := range l.snapshot {
		before[k] = v
	}
	l.mu.Unlock()

	after := make(map[string]string, len(changedKeys))
	for _, key := range changedKeys {
		newVal, _ := l.store.Get(key)
		after[key] = newVal
		// Sensitive values are masked, never suppressed: the fact that a
		// key changed is always visible in the log.
		l.log.InfoContext(ctx, "configuration property changed",
			"key", key,
			"old", props.MaskValue(key, before[key]),
			"new", props.MaskValue(key, newVal))
	}

	if slices.Contains(changedKeys, props.KeyTenantIDs) {
		oldSet := props.SplitList(before[props.KeyTenantIDs])
		newSet := props.SplitList(after[props.KeyTenantIDs])

		l.guard(ctx, "refresh system property mirrors", func() error {
			return l.setEnv(props.EnvKey(props.KeyTenantIDs), strings.Join(newSet, ","))
		})

		// Derived properties must be regenerated before any datasource is
		// built: a new tenant may inherit its credentials from the default
		// profile, and those only exist in the generated layer.
		l.guard(ctx, "refresh tenant properties", func() error {
			active, err := l.materializer.RefreshTenantProperties(newSet)
			if err != nil {
				return err
			}
			l.log.InfoContext(ctx, "tenant properties refreshed", "active_tenants", active)
			return nil
		})

		for _, id := range newSet {
			if !slices.Contains(oldSet, id) {
				l.addTenant(ctx, id)
			}
		}
		for _, id := range oldSet {
			if !slices.Contains(newSet, id) {
				l.guard(ctx, "remove datasource for tenant "+id, func() error {
					l.registry.Remove(id)
					return nil
				})
			}
		}
	}

	l.mu.Lock()
	for key, val := range after {
		l.snapshot[key] = val
	}
	l.mu.Unlock()
}

// addTenant resolves a newly-declared tenant's datasource properties and
// registers its pool. A tenant without a resolvable jdbc-url is skipped
// with a warning rather than failing the event.
func (l *Listener) addTenant(ctx context.Context, id string) {
	l.guard(ctx, "add datasource for tenant "+id, func() error {
		db := l.resolver.Database(id)
		if db.JDBCURL == "" {
			if v, ok := l.lookupEnv(materialize.DatasourceEnvVar(id)); ok {
				if v = strings.TrimSpace(v); v != "" && v != props.Placeholder {
					db.JDBCURL = v
				}
			}
		}
		if db.JDBCURL == "" {
			l.log.WarnContext(ctx, "skipping new tenant: no jdbc-url resolvable",
				"tenant_id", id)
			return nil
		}
		return l.registry.AddOrUpdate(ctx, id, db)
	})
}

// guard isolates one refresh sub-step: errors and panics are logged
// with context and processing continues for the remaining steps.
func (l *Listener) guard(ctx context.Context, step string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			l.log.ErrorContext(ctx, "refresh sub-step panicked",
				"step", step, "panic", fmt.Sprintf("%v", p))
		}
	}()
	if err := fn(); err != nil {
		l.log.ErrorContext(ctx, "refresh sub-step failed",
			"step", step, "error", err)
	}
}
