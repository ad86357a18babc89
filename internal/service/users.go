// Package service implements the business rules over the repositories:
// input validation chains, password hashing, audit recording and
// notification dispatch. It is deliberately thin; the structurally
// interesting work happens below it in the tenant routing layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"uidam/internal/audit"
	"uidam/internal/domain"
	"uidam/internal/notify"
	"uidam/internal/repository"
	"uidam/internal/tenant"
)

// ErrInvalidCredentials is returned when a password check fails.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// Users implements user lifecycle operations for the current tenant.
type Users struct {
	repo          *repository.Users
	auditor       *audit.Recorder
	mailer        *notify.Registry
	renderer      *notify.Renderer
	profiles      notify.ProfileSource
	notifications notify.Storage
	log           *slog.Logger
}

// NewUsers creates the user service.
func NewUsers(
	repo *repository.Users,
	auditor *audit.Recorder,
	mailer *notify.Registry,
	renderer *notify.Renderer,
	profiles notify.ProfileSource,
	notifications notify.Storage,
	log *slog.Logger,
) *Users {
	if log == nil {
		log = slog.Default()
	}
	return &Users{
		repo:          repo,
		auditor:       auditor,
		mailer:        mailer,
		renderer:      renderer,
		profiles:      profiles,
		notifications: notifications,
		log:           log,
	}
}

// CreateUserInput carries the fields accepted on user creation.
type CreateUserInput struct {
	UserName  string   `json:"user_name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

func (in CreateUserInput) validate() error {
	errs := ValidationError{}
	if name := strings.TrimSpace(in.UserName); name == "" {
		errs.add("user_name", "is required")
	} else if len(name) < 3 || len(name) > 64 {
		errs.add("user_name", "must be between 3 and 64 characters")
	}
	if in.Email == "" {
		errs.add("email", "is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs.add("email", "is not a valid email address")
	}
	if len(in.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	return errs.orNil()
}

// Create validates input, hashes the password and persists the user in
// the current tenant's database. A welcome notification is dispatched
// best-effort.
func (s *Users) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		UserName:     strings.TrimSpace(in.UserName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		Roles:        in.Roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Create(ctx, u)
	s.auditor.Record(ctx, "user.create", "user", u.ID.String(), err, map[string]string{
		"user_name": u.UserName,
	})
	if err != nil {
		return nil, err
	}

	s.welcome(ctx, u)
	return u, nil
}

// Get returns one user by id.
func (s *Users) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

// List returns users matching the filter.
func (s *Users) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	return s.repo.List(ctx, f)
}

// UpdateUserInput carries the mutable user fields; nil means unchanged.
type UpdateUserInput struct {
	Email     *string            `json:"email"`
	FirstName *string            `json:"first_name"`
	LastName  *string            `json:"last_name"`
	Status    *domain.UserStatus `json:"status"`
	Roles     []string           `json:"roles"`
}

// Update applies a partial update to a user.
func (s *Users) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*domain.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := ValidationError{}
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			errs.add("email", "is not a valid email address")
		} else {
			u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.UserStatusPending, domain.UserStatusActive, domain.UserStatusDeactivated:
			u.Status = *in.Status
		default:
			errs.add("status", "is not a valid status")
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Roles != nil {
		u.Roles = in.Roles
	}
	u.UpdatedAt = time.Now().UTC()

	err = s.repo.Update(ctx, u)
	s.auditor.Record(ctx, "user.update", "user", id.String(), err, nil)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Users) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if len(next) < 8 {
		return ValidationError{"new_password": {"must be at least 8 characters"}}
	}

	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		s.auditor.Record(ctx, "user.change_password", "user", id.String(), ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.UpdatePassword(ctx, id, string(hash))
	s.auditor.Record(ctx, "user.change_password", "user", id.String(), err, nil)
	return err
}

// Delete removes a user.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	s.auditor.Record(ctx, "user.delete", "user", id.String(), err, nil)
	return err
}

// welcome dispatches the welcome email and in-app notification.
// Delivery failures never fail user creation; they are logged.
func (s *Users) welcome(ctx context.Context, u *domain.User) {
	tenantID := tenant.CurrentID(ctx)

	if err := s.notifications.Create(ctx, notify.Notification{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    u.ID,
		Title:     "Welcome",
		Message:   "Your account has been created.",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.WarnContext(ctx, "failed to store welcome notification",
			"user_id", u.ID, "error", err)
	}

	p, err := s.profiles.Get(tenantID)
	if err != nil || p.Template.Path == "" {
		return
	}
	body, err := s.renderer.Render(p.Template.Path, "welcome.html", map[string]any{
		"UserName":  u.UserName,
		"FirstName": u.FirstName,
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to render welcome email",
			"user_id", u.ID, "error", err)
		return
	}
	if err := s.mailer.Send(ctx, notify.Email{
		To:       u.Email,
		Subject:  "Welcome to " + p.TenantName,
		HTMLBody: body,
	}); err != nil {
		s.log.WarnContext(ctx, "failed to send welcome email",
			"user_id", u.ID, "error", err)
	}
}
