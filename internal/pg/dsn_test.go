package pg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/pg"
	"uidam/internal/tenant/profile"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	t.Run("strips jdbc prefix and injects credentials", func(t *testing.T) {
		t.Parallel()

		dsn, err := pg.DSN(profile.DatabaseProperties{
			JDBCURL:  "jdbc:postgresql://db:5432/acme?sslmode=require",
			Username: "acme_app",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "postgresql://acme_app:secret@db:5432/acme?sslmode=require", dsn)
	})

	t.Run("property credentials override url credentials", func(t *testing.T) {
		t.Parallel()

		dsn, err := pg.DSN(profile.DatabaseProperties{
			JDBCURL:  "jdbc:postgresql://old:pw@db:5432/acme",
			Username: "acme_app",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "postgresql://acme_app:secret@db:5432/acme", dsn)
	})

	t.Run("username without password", func(t *testing.T) {
		t.Parallel()

		dsn, err := pg.DSN(profile.DatabaseProperties{
			JDBCURL:  "postgres://db:5432/acme",
			Username: "acme_app",
		})
		require.NoError(t, err)
		assert.Equal(t, "postgres://acme_app@db:5432/acme", dsn)
	})

	t.Run("non-postgres url is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := pg.DSN(profile.DatabaseProperties{JDBCURL: "jdbc:mysql://db:3306/acme"})
		assert.ErrorIs(t, err, pg.ErrUnsupportedJDBCURL)
	})
}
