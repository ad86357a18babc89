package tenant_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/tenant"
)

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	t.Run("reads and trims the configured header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		r.Header.Set("X-Tenant-ID", "  acme  ")

		id, err := tenant.NewHeaderResolver("X-Tenant-ID").Resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("blank name falls back to X-Tenant-ID", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		r.Header.Set("X-Tenant-ID", "acme")

		id, err := tenant.NewHeaderResolver("").Resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})
}

func TestPathResolver(t *testing.T) {
	t.Parallel()

	t.Run("extracts the segment at the configured position", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/tenants/acme/users", nil)

		id, err := tenant.NewPathResolver(3).Resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("position past the end yields empty, not an error", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)

		id, err := tenant.NewPathResolver(5).Resolve(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("invalid position is a resolution failure", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)

		_, err := tenant.NewPathResolver(0).Resolve(r)
		require.Error(t, err)
		assert.ErrorIs(t, err, tenant.ErrResolveFailed)
	})
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()

	t.Run("first non-empty result wins", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/tenants/from-path/users", nil)
		r.Header.Set("X-Tenant-ID", "from-header")

		composite := tenant.NewCompositeResolver(
			tenant.NewPathResolver(3),
			tenant.NewHeaderResolver("X-Tenant-ID"),
		)

		id, err := composite.Resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "from-path", id)
	})

	t.Run("falls through failing resolvers to a working one", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		r.Header.Set("X-Tenant-ID", "acme")

		broken := tenant.ResolverFunc(func(*http.Request) (string, error) {
			return "", errors.New("boom")
		})
		composite := tenant.NewCompositeResolver(broken, tenant.NewHeaderResolver("X-Tenant-ID"))

		id, err := composite.Resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("all failing resolvers surface a resolution failure", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)

		broken := tenant.ResolverFunc(func(*http.Request) (string, error) {
			return "", errors.New("boom")
		})
		composite := tenant.NewCompositeResolver(broken)

		_, err := composite.Resolve(r)
		require.Error(t, err)
		assert.ErrorIs(t, err, tenant.ErrResolveFailed)
	})

	t.Run("no signal anywhere yields empty without error", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)

		composite := tenant.NewCompositeResolver(
			tenant.NewPathResolver(3),
			tenant.NewHeaderResolver("X-Tenant-ID"),
		)

		id, err := composite.Resolve(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}

func TestValidID(t *testing.T) {
	t.Parallel()

	valid := []string{"default", "acme", "acme-eu", "Acme_2", "7eleven"}
	for _, id := range valid {
		assert.True(t, tenant.ValidID(id), id)
	}

	invalid := []string{"", "-acme", "acme.eu", "../etc/passwd", "a b", "acme/x"}
	for _, id := range invalid {
		assert.False(t, tenant.ValidID(id), id)
	}
}
