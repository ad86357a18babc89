package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus is the lifecycle state of a user record.
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// User is a managed identity within a tenant. All user rows live in the
// tenant's own database; the tenant id never appears on the row itself.
type User struct {
	ID           uuid.UUID  `json:"id"`
	UserName     string     `json:"user_name"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	Roles        []string   `json:"roles,omitempty"`
	AccountID    *uuid.UUID `json:"account_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserFilter narrows user list queries.
type UserFilter struct {
	Status   UserStatus
	UserName string
	Email    string
	Limit    int
	Offset   int
}
