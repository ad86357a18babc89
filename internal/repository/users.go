package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"uidam/internal/domain"
	"uidam/internal/pg"
)

// Users persists user records in the current tenant's database.
type Users struct {
	pools PoolResolver
}

// NewUsers creates a user repository over the given pool resolver.
func NewUsers(pools PoolResolver) *Users {
	return &Users{pools: pools}
}

const userColumns = `id, user_name, email, first_name, last_name, password_hash, status, roles, account_id, created_at, updated_at`

func (r *Users) Create(ctx context.Context, u *domain.User) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (id, user_name, email, first_name, last_name, password_hash, status, roles, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.UserName, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.Status, u.Roles, u.AccountID, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user %q", ErrDuplicate, u.UserName)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Users) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *Users) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
	return scanUser(row)
}

func (r *Users) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := make([]any, 0, 4)
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.UserName != "" {
		args = append(args, f.UserName)
		query += fmt.Sprintf(" AND user_name = $%d", len(args))
	}
	if f.Email != "" {
		args = append(args, f.Email)
		query += fmt.Sprintf(" AND email = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &u.Status, &u.Roles, &u.AccountID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Users) Update(ctx context.Context, u *domain.User) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, status = $5, roles = $6, account_id = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Status, u.Roles, u.AccountID, u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email %q", ErrDuplicate, u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, u.ID)
	}
	return nil
}

func (r *Users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return nil
}

func (r *Users) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := r.pools.CurrentPool(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Status, &u.Roles, &u.AccountID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
