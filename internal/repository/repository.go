// Package repository implements Postgres persistence over pgx. Every
// method resolves its connection pool through the datasource router at
// call time, so queries always run against the database of the tenant
// bound to the request context.
package repository

import (
	"context"

	"uidam/internal/pg"
)

// PoolResolver yields the datasource for the tenant bound to the
// context. The router satisfies it; tests substitute fakes.
type PoolResolver interface {
	CurrentPool(ctx context.Context) (pg.DB, error)
}
