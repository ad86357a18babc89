package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusDeleted   AccountStatus = "deleted"
)

// Account groups users under a tenant, optionally nested.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	ParentID  *uuid.UUID    `json:"parent_id,omitempty"`
	Roles     []string      `json:"roles,omitempty"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
