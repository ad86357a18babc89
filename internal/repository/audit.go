package repository

import (
	"context"
	"fmt"

	"uidam/internal/audit"
)

// AuditLog persists audit events in the current tenant's database.
type AuditLog struct {
	pools PoolResolver
}

// NewAuditLog creates an audit-log repository over the given pool resolver.
func NewAuditLog(pools PoolResolver) *AuditLog {
	return &AuditLog{pools: pools}
}

func (r *AuditLog) Insert(ctx context.Context, e audit.Event) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO audit_log (id, tenant_id, actor, action, resource, resource_id, result, error, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.TenantID, e.Actor, e.Action, e.Resource, e.ResourceID,
		e.Result, e.Error, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
