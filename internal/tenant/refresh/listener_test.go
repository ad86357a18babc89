package refresh_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/props"
	"uidam/internal/tenant/materialize"
	"uidam/internal/tenant/profile"
	"uidam/internal/tenant/refresh"
)

type fakeRegistry struct {
	mu      sync.Mutex
	added   []string
	removed []string
	addErr  map[string]error
	props   map[string]profile.DatabaseProperties
}

func (f *fakeRegistry) AddOrUpdate(_ context.Context, id string, p profile.DatabaseProperties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addErr[id]; err != nil {
		return err
	}
	if f.props == nil {
		f.props = map[string]profile.DatabaseProperties{}
	}
	f.props[id] = p
	f.added = append(f.added, id)
	return nil
}

func (f *fakeRegistry) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeRefresher) RefreshTenantProperties(ids []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ids)
	return ids, f.err
}

// mutableSource lets a test change a property value between events.
type mutableSource struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *mutableSource) Lookup(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mutableSource) Name() string { return "mutable" }

func (m *mutableSource) set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func newFixture(initial map[string]string) (*mutableSource, *props.Store, *fakeRegistry, *fakeRefresher, map[string]string) {
	src := &mutableSource{values: initial}
	store := props.NewStore(src)
	registry := &fakeRegistry{addErr: map[string]error{}}
	refresher := &fakeRefresher{}
	envMirror := map[string]string{}
	return src, store, registry, refresher, envMirror
}

func newListener(store *props.Store, registry *fakeRegistry, refresher refresh.Refresher, envMirror map[string]string) *refresh.Listener {
	resolver := profile.NewResolver(store)
	return refresh.New(store, resolver, registry, refresher,
		refresh.WithEnvLookup(func(string) (string, bool) { return "", false }),
		refresh.WithEnvSetter(func(key, value string) error {
			envMirror[key] = value
			return nil
		}),
	)
}

func tenantValues(id string) map[string]string {
	return map[string]string{
		props.ProfileKey(id, profile.SuffixJDBCURL):  "jdbc:postgresql://db:5432/" + id,
		props.ProfileKey(id, profile.SuffixUsername): id + "_app",
		props.ProfileKey(id, profile.SuffixPassword): "secret",
	}
}

func TestHandleChangeTenantMembership(t *testing.T) {
	t.Parallel()

	t.Run("diffs added and removed tenants from one snapshot", func(t *testing.T) {
		t.Parallel()

		initial := map[string]string{"tenant.ids": "a,b"}
		for k, v := range tenantValues("a") {
			initial[k] = v
		}
		for k, v := range tenantValues("c") {
			initial[k] = v
		}
		src, store, registry, refresher, envMirror := newFixture(initial)

		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		// b replaced by c
		src.set("tenant.ids", "a,c")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		assert.Equal(t, []string{"c"}, registry.added)
		assert.Equal(t, []string{"b"}, registry.removed)
		assert.Equal(t, [][]string{{"a", "c"}}, refresher.calls)
		assert.Equal(t, "a,c", envMirror["TENANT_IDS"])
	})

	t.Run("unchanged event is idempotent", func(t *testing.T) {
		t.Parallel()

		_, store, registry, refresher, envMirror := newFixture(map[string]string{"tenant.ids": "a"})
		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		assert.Empty(t, registry.added)
		assert.Empty(t, registry.removed)
	})

	t.Run("snapshot advances so a second event diffs against the new state", func(t *testing.T) {
		t.Parallel()

		initial := map[string]string{"tenant.ids": "a"}
		for _, id := range []string{"b", "c"} {
			for k, v := range tenantValues(id) {
				initial[k] = v
			}
		}
		src, store, registry, refresher, envMirror := newFixture(initial)
		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.ids", "a,b")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})
		src.set("tenant.ids", "a,b,c")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		// b must not be re-added by the second event.
		assert.Equal(t, []string{"b", "c"}, registry.added)
		assert.Empty(t, registry.removed)
	})

	t.Run("new tenant inheriting credentials from the default profile gets a datasource", func(t *testing.T) {
		t.Parallel()

		initial := map[string]string{
			"tenant.ids":                       "a",
			"tenant.default-tenant-id":         "default",
			"tenant.config.validation.enabled": "false",

			props.ProfileKey("default", profile.SuffixJDBCURL):  "jdbc:postgresql://db:5432/default",
			props.ProfileKey("default", profile.SuffixUsername): "app",
			props.ProfileKey("default", profile.SuffixPassword): "hunter2",

			// c supplies only its own jdbc-url; username and password must
			// come from the default profile before the datasource is built.
			props.ProfileKey("c", profile.SuffixJDBCURL): "jdbc:postgresql://db:5432/c",
		}
		for k, v := range tenantValues("a") {
			initial[k] = v
		}
		src := &mutableSource{values: initial}
		store := props.NewStore(src)
		registry := &fakeRegistry{addErr: map[string]error{}}
		envMirror := map[string]string{}
		materializer := materialize.New(store,
			materialize.WithEnvLookup(func(string) (string, bool) { return "", false }))

		l := newListener(store, registry, materializer, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.ids", "a,c")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		require.Equal(t, []string{"c"}, registry.added)
		added := registry.props["c"]
		assert.Empty(t, added.MissingFields())
		assert.Equal(t, "jdbc:postgresql://db:5432/c", added.JDBCURL)
		assert.Equal(t, "app", added.Username)
		assert.Equal(t, "hunter2", added.Password)
	})

	t.Run("new tenant without resolvable jdbc-url is skipped, removals still run", func(t *testing.T) {
		t.Parallel()

		src, store, registry, refresher, envMirror := newFixture(map[string]string{"tenant.ids": "a,b"})
		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.ids", "a,ghost")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		assert.Empty(t, registry.added)
		assert.Equal(t, []string{"b"}, registry.removed)
	})

	t.Run("add failure does not block the rest of the batch", func(t *testing.T) {
		t.Parallel()

		initial := map[string]string{"tenant.ids": "a"}
		for _, id := range []string{"b", "c"} {
			for k, v := range tenantValues(id) {
				initial[k] = v
			}
		}
		src, store, registry, refresher, envMirror := newFixture(initial)
		registry.addErr["b"] = errors.New("connection refused")

		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.ids", "b,c")
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		assert.Equal(t, []string{"c"}, registry.added)
		assert.Equal(t, []string{"a"}, registry.removed)
		require.Len(t, refresher.calls, 1)
	})

	t.Run("materializer failure is contained", func(t *testing.T) {
		t.Parallel()

		initial := map[string]string{"tenant.ids": "a"}
		for k, v := range tenantValues("b") {
			initial[k] = v
		}
		src, store, registry, refresher, envMirror := newFixture(initial)
		refresher.err = errors.New("default tenant invalid")

		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.ids", "a,b")
		// Must not panic or propagate.
		l.HandleChange(context.Background(), []string{props.KeyTenantIDs})

		assert.Equal(t, []string{"b"}, registry.added)
	})
}

func TestHandleChangeNonMembershipKeys(t *testing.T) {
	t.Parallel()

	t.Run("empty key set is a no-op", func(t *testing.T) {
		t.Parallel()

		_, store, registry, refresher, envMirror := newFixture(map[string]string{"tenant.ids": "a"})
		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		l.HandleChange(context.Background(), nil)

		assert.Empty(t, registry.added)
		assert.Empty(t, refresher.calls)
	})

	t.Run("default tenant change does not touch the registry", func(t *testing.T) {
		t.Parallel()

		src, store, registry, refresher, envMirror := newFixture(map[string]string{
			"tenant.ids":               "a",
			"tenant.default-tenant-id": "a",
		})
		l := newListener(store, registry, refresher, envMirror)
		l.InitializePropertyCache()

		src.set("tenant.default-tenant-id", "b")
		l.HandleChange(context.Background(), []string{props.KeyDefaultTenantID})

		assert.Empty(t, registry.added)
		assert.Empty(t, registry.removed)
		assert.Empty(t, refresher.calls)
	})
}
