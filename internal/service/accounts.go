package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"uidam/internal/audit"
	"uidam/internal/domain"
	"uidam/internal/repository"
)

// Accounts implements account lifecycle operations for the current tenant.
type Accounts struct {
	repo    *repository.Accounts
	auditor *audit.Recorder
}

// NewAccounts creates the account service.
func NewAccounts(repo *repository.Accounts, auditor *audit.Recorder) *Accounts {
	return &Accounts{repo: repo, auditor: auditor}
}

// CreateAccountInput carries the fields accepted on account creation.
type CreateAccountInput struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
	Roles    []string   `json:"roles"`
}

func (in CreateAccountInput) validate() error {
	errs := ValidationError{}
	if name := strings.TrimSpace(in.Name); name == "" {
		errs.add("name", "is required")
	} else if len(name) > 128 {
		errs.add("name", "must be at most 128 characters")
	}
	return errs.orNil()
}

// Create validates and persists a new account.
func (s *Accounts) Create(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &domain.Account{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		ParentID:  in.ParentID,
		Roles:     in.Roles,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(ctx, a)
	s.auditor.Record(ctx, "account.create", "account", a.ID.String(), err, map[string]string{
		"name": a.Name,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns one account by id.
func (s *Accounts) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns accounts for the current tenant.
func (s *Accounts) List(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateAccountInput carries the mutable account fields; nil means unchanged.
type UpdateAccountInput struct {
	Name   *string               `json:"name"`
	Status *domain.AccountStatus `json:"status"`
	Roles  []string              `json:"roles"`
}

// Update applies a partial update to an account.
func (s *Accounts) Update(ctx context.Context, id uuid.UUID, in UpdateAccountInput) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := ValidationError{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			errs.add("name", "cannot be blank")
		} else {
			a.Name = name
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.AccountStatusActive, domain.AccountStatusSuspended:
			a.Status = *in.Status
		default:
			errs.add("status", "is not a valid status")
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if in.Roles != nil {
		a.Roles = in.Roles
	}
	a.UpdatedAt = time.Now().UTC()

	err = s.repo.Update(ctx, a)
	s.auditor.Record(ctx, "account.update", "account", id.String(), err, nil)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete soft-deletes an account.
func (s *Accounts) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	s.auditor.Record(ctx, "account.delete", "account", id.String(), err, nil)
	return err
}
