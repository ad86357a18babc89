package pg

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"uidam/internal/tenant/profile"
)

// ErrUnsupportedJDBCURL is returned for URLs that are not
// Postgres-shaped after stripping the jdbc prefix.
var ErrUnsupportedJDBCURL = errors.New("unsupported jdbc url")

// DSN converts a tenant's JDBC-style datasource properties into a pgx
// connection string. Tenant configuration keeps the jdbc form for
// compatibility with existing deployments; only the Postgres
// subprotocol is supported.
func DSN(p profile.DatabaseProperties) (string, error) {
	raw := strings.TrimPrefix(p.JDBCURL, "jdbc:")
	if !strings.HasPrefix(raw, "postgresql://") && !strings.HasPrefix(raw, "postgres://") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedJDBCURL, p.JDBCURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedJDBCURL, err)
	}

	// Credentials from properties win over credentials embedded in the URL:
	// the materializer resolves them through the same precedence chain.
	if p.Username != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		} else {
			u.User = url.User(p.Username)
		}
	}

	return u.String(), nil
}
