package props_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/props"
)

func TestStoreGet(t *testing.T) {
	t.Parallel()

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(
			props.NewMapSource("yaml", map[string]string{"tenant.ids": "acme"}),
			props.NewMapSource("file", map[string]string{"tenant.ids": "beta"}),
		)

		v, ok := store.Get("tenant.ids")
		require.True(t, ok)
		assert.Equal(t, "acme", v)
	})

	t.Run("falls through blank values", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(
			props.NewMapSource("yaml", map[string]string{"tenant.ids": "   "}),
			props.NewMapSource("file", map[string]string{"tenant.ids": "beta"}),
		)

		v, ok := store.Get("tenant.ids")
		require.True(t, ok)
		assert.Equal(t, "beta", v)
	})

	t.Run("placeholder is treated as absent", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(
			props.NewMapSource("yaml", map[string]string{"tenants.profile.default.password": props.Placeholder}),
			props.NewMapSource("file", map[string]string{"tenants.profile.default.password": "hunter2"}),
		)

		v, ok := store.Get("tenants.profile.default.password")
		require.True(t, ok)
		assert.Equal(t, "hunter2", v)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(props.NewMapSource("yaml", map[string]string{}))

		_, ok := store.Get("tenant.ids")
		assert.False(t, ok)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(
			props.NewMapSource("yaml", map[string]string{"tenant.ids": "  acme  "}),
		)

		v, ok := store.Get("tenant.ids")
		require.True(t, ok)
		assert.Equal(t, "acme", v)
	})
}

func TestStoreGeneratedLayer(t *testing.T) {
	t.Parallel()

	t.Run("generated loses to every real source", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(
			props.NewMapSource("yaml", map[string]string{"tenants.profile.acme.username": "explicit"}),
		)
		store.SetGenerated(map[string]string{"tenants.profile.acme.username": "derived"})

		v, ok := store.Get("tenants.profile.acme.username")
		require.True(t, ok)
		assert.Equal(t, "explicit", v)
	})

	t.Run("generated serves keys absent from real sources", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(props.NewMapSource("yaml", map[string]string{}))
		store.SetGenerated(map[string]string{"tenants.profile.acme.username": "derived"})

		v, ok := store.Get("tenants.profile.acme.username")
		require.True(t, ok)
		assert.Equal(t, "derived", v)
	})

	t.Run("SetGenerated replaces the whole layer", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(props.NewMapSource("yaml", map[string]string{}))
		store.SetGenerated(map[string]string{"a": "1", "b": "2"})
		store.SetGenerated(map[string]string{"a": "3"})

		v, ok := store.Get("a")
		require.True(t, ok)
		assert.Equal(t, "3", v)

		_, ok = store.Get("b")
		assert.False(t, ok)

		assert.Equal(t, map[string]string{"a": "3"}, store.Generated())
	})

	t.Run("Generated returns a copy, not the live layer", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(props.NewMapSource("yaml", map[string]string{}))
		store.SetGenerated(map[string]string{"a": "1"})

		snapshot := store.Generated()
		snapshot["a"] = "mutated"

		v, ok := store.Get("a")
		require.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("GetExplicit ignores the generated layer", func(t *testing.T) {
		t.Parallel()

		store := props.NewStore(props.NewMapSource("yaml", map[string]string{}))
		store.SetGenerated(map[string]string{"tenants.profile.acme.username": "derived"})

		_, ok := store.GetExplicit("tenants.profile.acme.username")
		assert.False(t, ok)

		v, ok := store.Get("tenants.profile.acme.username")
		require.True(t, ok)
		assert.Equal(t, "derived", v)
	})
}

func TestStoreBool(t *testing.T) {
	t.Parallel()

	store := props.NewStore(props.NewMapSource("yaml", map[string]string{
		"on":      "true",
		"off":     "false",
		"numeric": "1",
		"garbage": "maybe",
	}))

	assert.True(t, store.Bool("on", false))
	assert.False(t, store.Bool("off", true))
	assert.True(t, store.Bool("numeric", false))
	assert.True(t, store.Bool("garbage", true))
	assert.False(t, store.Bool("absent", false))
}

func TestProfileKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tenants.profile.acme.jdbc-url", props.ProfileKey("acme", "jdbc-url"))
	assert.Equal(t, "tenants.profile.default.email.provider", props.ProfileKey("default", "email.provider"))
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"acme", "beta"}, props.SplitList("acme, beta"))
	assert.Equal(t, []string{"acme"}, props.SplitList(" acme ,, "))
	assert.Empty(t, props.SplitList(""))
	assert.Empty(t, props.SplitList(" , ,"))
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TENANT_IDS", props.EnvKey("tenant.ids"))
	assert.Equal(t, "TENANTS_PROFILE_ACME_JDBC_URL", props.EnvKey("tenants.profile.acme.jdbc-url"))
}
