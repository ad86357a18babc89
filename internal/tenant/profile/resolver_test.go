package profile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/props"
	"uidam/internal/tenant/profile"
)

func storeWith(values map[string]string) *props.Store {
	return props.NewStore(props.NewMapSource("test", values))
}

func TestResolverGet(t *testing.T) {
	t.Parallel()

	t.Run("assembles full profile", func(t *testing.T) {
		t.Parallel()

		store := storeWith(map[string]string{
			"tenants.profile.acme.jdbc-url":       "jdbc:postgresql://db:5432/acme",
			"tenants.profile.acme.username":       "acme_app",
			"tenants.profile.acme.password":       "secret",
			"tenants.profile.acme.tenant-name":    "Acme Corp",
			"tenants.profile.acme.email.provider": "postmark",
			"tenants.profile.acme.email.server-token": "pm-token",
			"tenants.profile.acme.template.path":      "templates/acme",
		})

		p, err := profile.NewResolver(store).Get("acme")
		require.NoError(t, err)

		assert.Equal(t, "acme", p.TenantID)
		assert.Equal(t, "Acme Corp", p.TenantName)
		assert.Equal(t, "jdbc:postgresql://db:5432/acme", p.Database.JDBCURL)
		assert.Equal(t, "postmark", p.Email.Provider)
		assert.Equal(t, "pm-token", p.Email.ServerToken)
		assert.Equal(t, "templates/acme", p.Template.Path)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		_, err := profile.NewResolver(storeWith(nil)).Get("ghost")
		assert.ErrorIs(t, err, profile.ErrProfileNotFound)
	})
}

func TestResolverDatabase(t *testing.T) {
	t.Parallel()

	t.Run("applies pool defaults", func(t *testing.T) {
		t.Parallel()

		store := storeWith(map[string]string{
			"tenants.profile.acme.jdbc-url": "jdbc:postgresql://db:5432/acme",
			"tenants.profile.acme.username": "acme_app",
			"tenants.profile.acme.password": "secret",
		})

		db := profile.NewResolver(store).Database("acme")
		assert.Equal(t, int32(2), db.MinPoolSize)
		assert.Equal(t, int32(10), db.MaxPoolSize)
		assert.Equal(t, 30*time.Second, db.ConnectionTimeout)
		assert.Equal(t, 10*time.Minute, db.MaxIdleTime)
		assert.Equal(t, "uidam-acme", db.PoolName)
		assert.Equal(t, profile.DefaultDriverClassName, db.DriverClassName)
		assert.Empty(t, db.MissingFields())
	})

	t.Run("honors explicit pool settings", func(t *testing.T) {
		t.Parallel()

		store := storeWith(map[string]string{
			"tenants.profile.acme.min-pool-size":         "5",
			"tenants.profile.acme.max-pool-size":         "25",
			"tenants.profile.acme.connection-timeout-ms": "1500",
			"tenants.profile.acme.pool-name":             "custom",
		})

		db := profile.NewResolver(store).Database("acme")
		assert.Equal(t, int32(5), db.MinPoolSize)
		assert.Equal(t, int32(25), db.MaxPoolSize)
		assert.Equal(t, 1500*time.Millisecond, db.ConnectionTimeout)
		assert.Equal(t, "custom", db.PoolName)
	})

	t.Run("names missing required fields", func(t *testing.T) {
		t.Parallel()

		db := profile.NewResolver(storeWith(map[string]string{
			"tenants.profile.acme.username": "acme_app",
		})).Database("acme")

		assert.ElementsMatch(t, []string{"jdbc-url", "password"}, db.MissingFields())
	})
}
