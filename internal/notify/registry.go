package notify

import (
	"context"
	"fmt"
	"sync"

	"uidam/internal/tenant"
	"uidam/internal/tenant/profile"
)

// ProfileSource resolves tenant profiles; the profile resolver
// satisfies it.
type ProfileSource interface {
	Get(tenantID string) (*profile.Profile, error)
}

// Registry hands out the email sender for the current tenant, caching
// derived senders so they are not rebuilt on every call. Entries are
// invalidated explicitly when tenant configuration changes, not on a
// TTL.
type Registry struct {
	profiles ProfileSource

	mu      sync.RWMutex
	senders map[string]Sender
}

// NewRegistry creates a sender registry over the given profile source.
func NewRegistry(profiles ProfileSource) *Registry {
	return &Registry{
		profiles: profiles,
		senders:  make(map[string]Sender),
	}
}

// SenderFor returns the cached or newly-derived sender for a tenant.
func (r *Registry) SenderFor(tenantID string) (Sender, error) {
	r.mu.RLock()
	s, ok := r.senders[tenantID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	p, err := r.profiles.Get(tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile for sender: %w", err)
	}
	s, err = NewSender(p.Email)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.senders[tenantID] = s
	r.mu.Unlock()
	return s, nil
}

// Send delivers an email for the tenant bound to the context.
func (r *Registry) Send(ctx context.Context, msg Email) error {
	s, err := r.SenderFor(tenant.CurrentID(ctx))
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

// ClearCache drops the cached sender for one tenant.
func (r *Registry) ClearCache(tenantID string) {
	r.mu.Lock()
	delete(r.senders, tenantID)
	r.mu.Unlock()
}

// ClearAllCache drops every cached sender.
func (r *Registry) ClearAllCache() {
	r.mu.Lock()
	r.senders = make(map[string]Sender)
	r.mu.Unlock()
}
