package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"uidam/internal/domain"
	"uidam/internal/pg"
)

// Accounts persists account records in the current tenant's database.
type Accounts struct {
	pools PoolResolver
}

// NewAccounts creates an account repository over the given pool resolver.
func NewAccounts(pools PoolResolver) *Accounts {
	return &Accounts{pools: pools}
}

const accountColumns = `id, name, parent_id, roles, status, created_at, updated_at`

func (r *Accounts) Create(ctx context.Context, a *domain.Account) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO accounts (id, name, parent_id, roles, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.ParentID, a.Roles, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: account %q", ErrDuplicate, a.Name)
		}
		if pg.IsForeignKeyViolationError(err) {
			return fmt.Errorf("%w: parent account", ErrNotFound)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *Accounts) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return nil, err
	}

	var a domain.Account
	err = db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.ParentID, &a.Roles, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *Accounts) List(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status <> 'deleted' ORDER BY created_at DESC`
	args := make([]any, 0, 2)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.ParentID, &a.Roles, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Accounts) Update(ctx context.Context, a *domain.Account) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `
		UPDATE accounts SET name = $2, parent_id = $3, roles = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		a.ID, a.Name, a.ParentID, a.Roles, a.Status, a.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: account %q", ErrDuplicate, a.Name)
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", ErrNotFound, a.ID)
	}
	return nil
}

// Delete marks the account deleted; rows are retained for audit history.
func (r *Accounts) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx,
		`UPDATE accounts SET status = 'deleted', updated_at = now() WHERE id = $1 AND status <> 'deleted'`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	return nil
}
