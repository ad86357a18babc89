package props

import (
	"strings"
	"sync"
)

// Placeholder is the reserved sentinel meaning "not actually configured".
// Any source returning it is treated as if the key were absent.
const Placeholder = "ChangeMe"

// Well-known system property keys.
const (
	KeyTenantIDs          = "tenant.ids"
	KeyDefaultTenantID    = "tenant.default-tenant-id"
	KeyMultitenantEnabled = "tenant.multitenant.enabled"
	KeyValidationEnabled  = "tenant.config.validation.enabled"
	KeyDBNameValidation   = "uidam.tenant.config.dbname.validation"
)

// ProfilePrefix is the canonical namespace for per-tenant properties.
const ProfilePrefix = "tenants.profile."

// ProfileKey builds the canonical per-tenant property key for a suffix,
// e.g. ProfileKey("acme", "jdbc-url") -> "tenants.profile.acme.jdbc-url".
func ProfileKey(tenantID, suffix string) string {
	return ProfilePrefix + tenantID + "." + suffix
}

// Source is a single layer of the property store.
type Source interface {
	// Lookup returns the raw value for a key. The bool reports whether the
	// source has any value at all; blank and placeholder filtering is the
	// Store's job.
	Lookup(key string) (string, bool)

	// Name identifies the source in diagnostics.
	Name() string
}

// Store resolves property keys against ordered sources plus a synthetic
// generated layer that always loses to real sources.
type Store struct {
	sources []Source

	mu        sync.RWMutex
	generated map[string]string
}

// NewStore creates a store with the given sources in precedence order.
func NewStore(sources ...Source) *Store {
	return &Store{
		sources:   sources,
		generated: make(map[string]string),
	}
}

// Get resolves a key through the precedence chain. The first source
// yielding a non-blank, non-placeholder value wins; the generated layer
// is consulted last.
func (s *Store) Get(key string) (string, bool) {
	for _, src := range s.sources {
		if v, ok := src.Lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" && v != Placeholder {
				return v, true
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.generated[key]; ok {
		if v = strings.TrimSpace(v); v != "" && v != Placeholder {
			return v, true
		}
	}
	return "", false
}

// GetExplicit resolves a key through the real sources only, ignoring
// the generated layer. The materializer uses it to distinguish a
// tenant's own configuration from values inherited on a previous pass.
func (s *Store) GetExplicit(key string) (string, bool) {
	for _, src := range s.sources {
		if v, ok := src.Lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" && v != Placeholder {
				return v, true
			}
		}
	}
	return "", false
}

// GetDefault resolves a key, falling back to def when absent.
func (s *Store) GetDefault(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Bool resolves a key as a boolean, falling back to def when absent or
// unparsable.
func (s *Store) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// SetGenerated replaces the entire generated layer in one step, so
// readers never observe a half-applied materialization pass.
func (s *Store) SetGenerated(values map[string]string) {
	generated := make(map[string]string, len(values))
	for k, v := range values {
		generated[k] = v
	}

	s.mu.Lock()
	s.generated = generated
	s.mu.Unlock()
}

// Generated returns a copy of the current generated layer.
func (s *Store) Generated() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.generated))
	for k, v := range s.generated {
		out[k] = v
	}
	return out
}

// SplitList splits a comma-separated value, trimming whitespace and
// dropping blank entries.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
