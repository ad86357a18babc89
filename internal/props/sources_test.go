package props_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/props"
)

func TestLoadYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("flattens nested mappings to dotted keys", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tenants.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
tenant:
  ids: "acme,beta"
  multitenant:
    enabled: true
tenants:
  profile:
    default:
      jdbc-url: jdbc:postgresql://db:5432/default
      max-pool-size: 10
`), 0o600))

		src, err := props.LoadYAMLSource(path)
		require.NoError(t, err)

		v, ok := src.Lookup("tenant.ids")
		require.True(t, ok)
		assert.Equal(t, "acme,beta", v)

		v, ok = src.Lookup("tenant.multitenant.enabled")
		require.True(t, ok)
		assert.Equal(t, "true", v)

		v, ok = src.Lookup("tenants.profile.default.jdbc-url")
		require.True(t, ok)
		assert.Equal(t, "jdbc:postgresql://db:5432/default", v)

		v, ok = src.Lookup("tenants.profile.default.max-pool-size")
		require.True(t, ok)
		assert.Equal(t, "10", v)
	})

	t.Run("accepts flat dotted keys", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tenants.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"tenants.profile.acme.username: acme_app\n"), 0o600))

		src, err := props.LoadYAMLSource(path)
		require.NoError(t, err)

		v, ok := src.Lookup("tenants.profile.acme.username")
		require.True(t, ok)
		assert.Equal(t, "acme_app", v)
	})

	t.Run("missing file yields empty source", func(t *testing.T) {
		t.Parallel()

		src, err := props.LoadYAMLSource(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		_, ok := src.Lookup("tenant.ids")
		assert.False(t, ok)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tenants.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tenant: [unterminated"), 0o600))

		_, err := props.LoadYAMLSource(path)
		assert.Error(t, err)
	})
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("serves per-tenant property files by suffix", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.properties"), []byte(
			"jdbc-url=jdbc:postgresql://db:5432/acme\nusername=acme_app\n"), 0o600))

		src := props.NewFileSource(dir)

		v, ok := src.Lookup("tenants.profile.acme.jdbc-url")
		require.True(t, ok)
		assert.Equal(t, "jdbc:postgresql://db:5432/acme", v)

		v, ok = src.Lookup("tenants.profile.acme.username")
		require.True(t, ok)
		assert.Equal(t, "acme_app", v)
	})

	t.Run("ignores keys outside the tenant namespace", func(t *testing.T) {
		t.Parallel()

		src := props.NewFileSource(t.TempDir())

		_, ok := src.Lookup("tenant.ids")
		assert.False(t, ok)
	})

	t.Run("missing tenant file is not cached", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := props.NewFileSource(dir)

		_, ok := src.Lookup("tenants.profile.beta.username")
		require.False(t, ok)

		// Tenant file deployed after the first lookup.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.properties"), []byte(
			"username=beta_app\n"), 0o600))

		v, ok := src.Lookup("tenants.profile.beta.username")
		require.True(t, ok)
		assert.Equal(t, "beta_app", v)
	})
}
