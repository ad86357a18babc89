package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"uidam/internal/tenant/profile"
)

const (
	retryAttempts = 3
	retryInterval = 5 * time.Second
)

// Connect builds the connection pool for one tenant from its resolved
// datasource properties, retrying with linear backoff so transient
// startup races against the database do not fail the whole boot.
func Connect(ctx context.Context, p profile.DatabaseProperties) (*pgxpool.Pool, error) {
	dsn, err := DSN(p)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}

	connConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if p.MaxPoolSize > 0 {
		connConfig.MaxConns = p.MaxPoolSize
	}
	if p.MinPoolSize > 0 {
		connConfig.MinConns = p.MinPoolSize
	}
	if p.MaxIdleTime > 0 {
		connConfig.MaxConnIdleTime = p.MaxIdleTime
	}
	if p.ConnectionTimeout > 0 {
		connConfig.ConnConfig.ConnectTimeout = p.ConnectionTimeout
	}

	for i := range retryAttempts {
		conn, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			time.Sleep(time.Duration(i+1) * retryInterval)
			continue
		}

		// Verify with an actual ping to catch authentication and
		// permission issues before the pool is handed to the router.
		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			time.Sleep(time.Duration(i+1) * retryInterval)
			continue
		}

		return conn, nil
	}

	return nil, ErrFailedToOpenDBConnection
}

// Healthcheck returns a closure that validates connectivity of the
// given handle for health endpoints.
func Healthcheck(db DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
