// Package audit records security-relevant actions (user and account
// lifecycle changes) into the current tenant's database. Metadata
// values under credential-looking keys are masked before persistence.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"uidam/internal/props"
	"uidam/internal/tenant"
)

// Result represents the outcome of an audited action
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Event represents a single audit log entry
type Event struct {
	ID         uuid.UUID         `json:"id"`
	TenantID   string            `json:"tenant_id"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id"`
	Result     Result            `json:"result"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Storage persists audit events.
type Storage interface {
	Insert(ctx context.Context, e Event) error
}

// Recorder builds and persists audit events. Recording failures are
// logged but never fail the audited operation itself.
type Recorder struct {
	storage Storage
	log     *slog.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(storage Storage, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{storage: storage, log: log}
}

// Record persists one audit event for the tenant bound to the context.
func (r *Recorder) Record(ctx context.Context, action, resource, resourceID string, err error, metadata map[string]string) {
	e := Event{
		ID:         uuid.New(),
		TenantID:   tenant.CurrentID(ctx),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Result:     ResultSuccess,
		Metadata:   maskMetadata(metadata),
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		e.Result = ResultFailure
		e.Error = err.Error()
	}

	if err := r.storage.Insert(ctx, e); err != nil {
		r.log.ErrorContext(ctx, "failed to record audit event",
			"action", action, "resource", resource, "error", err)
	}
}

func maskMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = props.MaskValue(k, v)
	}
	return out
}
