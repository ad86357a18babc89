// Package materialize guarantees every active tenant has a complete,
// valid property set before the application accepts traffic. Missing
// properties are inherited from the default tenant's profile with
// per-key transformation rules, required keys are validated, and
// tenants failing validation are excluded from the active set.
//
// The materializer runs once at startup, before the datasource router is
// built, and again whenever tenant membership changes at runtime.
package materialize

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"uidam/internal/props"
	"uidam/internal/tenant"
	"uidam/internal/tenant/dbname"
	"uidam/internal/tenant/profile"
)

// EnvDatasourceSuffix is the naming convention for tenant-specific
// datasource overrides: upper-cased tenant id with dashes replaced by
// underscores, plus this suffix.
const EnvDatasourceSuffix = "_POSTGRES_DATASOURCE"

// Materializer derives and validates per-tenant property sets against
// the layered store.
type Materializer struct {
	store     *props.Store
	log       *slog.Logger
	lookupEnv func(string) (string, bool)
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger used for validation diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(m *Materializer) { m.log = log }
}

// WithEnvLookup overrides environment lookup, for tests.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(m *Materializer) { m.lookupEnv = fn }
}

// New creates a materializer over the given store.
func New(store *props.Store, opts ...Option) *Materializer {
	m := &Materializer{
		store:     store,
		log:       slog.Default(),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultTenant returns the configured default tenant identifier.
func (m *Materializer) DefaultTenant() string {
	return m.store.GetDefault(props.KeyDefaultTenantID, tenant.DefaultID)
}

// WorkingSet computes the declared tenant set: the single default tenant
// when multi-tenancy is disabled, otherwise the configured
// comma-separated list with blanks dropped and whitespace trimmed.
func (m *Materializer) WorkingSet() []string {
	if !m.store.Bool(props.KeyMultitenantEnabled, false) {
		return []string{m.DefaultTenant()}
	}
	return props.SplitList(m.store.GetDefault(props.KeyTenantIDs, ""))
}

// Run materializes the declared tenant set. It returns the active tenant
// ids — declared tenants that passed validation — and replaces the
// store's generated layer in one step. An invalid default tenant aborts
// the whole pass, since there is nothing to inherit from.
func (m *Materializer) Run() ([]string, error) {
	return m.RefreshTenantProperties(m.WorkingSet())
}

// RefreshTenantProperties re-materializes properties for the given
// tenant membership. Used at startup via Run and on demand when the
// tenant list changes at runtime.
func (m *Materializer) RefreshTenantProperties(ids []string) ([]string, error) {
	defaultID := m.DefaultTenant()

	if missing := m.requiredMissing(defaultID); len(missing) > 0 {
		return nil, fmt.Errorf("%w: default tenant %q is missing required properties %v",
			ErrDefaultTenantInvalid, defaultID, missing)
	}

	mode := dbname.ParseMode(m.store.GetDefault(props.KeyDBNameValidation, ""))
	validationEnabled := m.store.Bool(props.KeyValidationEnabled, true)

	generated := make(map[string]string)
	active := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == defaultID {
			// Already validated above; exempt from the database-name policy.
			active = append(active, id)
			m.generateFor(id, defaultID, generated)
			continue
		}

		if validationEnabled {
			if missing := m.requiredMissing(id); len(missing) > 0 {
				m.log.Error("tenant excluded: missing required properties",
					"tenant_id", id, "missing", missing)
				continue
			}
		}

		// The database-name policy is a security control: it runs even
		// when the standard property validation is disabled.
		url := m.effectiveJDBCURL(id, defaultID)
		if !dbname.Validate(id, url, mode) {
			m.log.Error("tenant excluded: database name does not satisfy validation policy",
				"tenant_id", id, "mode", mode.String(),
				"jdbc_url", props.MaskValue(profile.SuffixJDBCURL, url))
			continue
		}

		active = append(active, id)
		m.generateFor(id, defaultID, generated)
	}

	m.store.SetGenerated(generated)
	return active, nil
}

// requiredMissing reports required keys the tenant does not supply
// itself. The tenant-specific datasource environment variable counts as
// the tenant's own jdbc-url. Email provider keys become required only
// when the effective provider is "internal".
func (m *Materializer) requiredMissing(id string) []string {
	var missing []string

	if _, ok := m.store.GetExplicit(props.ProfileKey(id, profile.SuffixJDBCURL)); !ok {
		if v, ok := m.lookupEnv(DatasourceEnvVar(id)); !ok || isBlankOrPlaceholder(v) {
			missing = append(missing, profile.SuffixJDBCURL)
		}
	}
	for _, suffix := range []string{profile.SuffixUsername, profile.SuffixPassword} {
		if _, ok := m.store.GetExplicit(props.ProfileKey(id, suffix)); !ok {
			missing = append(missing, suffix)
		}
	}

	if provider, _ := m.store.Get(props.ProfileKey(id, profile.SuffixEmailProvider)); provider == profile.EmailProviderInternal {
		for _, suffix := range []string{profile.SuffixEmailHost, profile.SuffixEmailUsername, profile.SuffixEmailPassword} {
			if _, ok := m.store.GetExplicit(props.ProfileKey(id, suffix)); !ok {
				missing = append(missing, suffix)
			}
		}
	}

	return missing
}

// effectiveJDBCURL resolves the URL the database-name policy applies to:
// the tenant's own value, the tenant-specific environment variable, or
// the default tenant's URL with the database segment rewritten.
func (m *Materializer) effectiveJDBCURL(id, defaultID string) string {
	if v, ok := m.store.GetExplicit(props.ProfileKey(id, profile.SuffixJDBCURL)); ok {
		return v
	}
	if v, ok := m.lookupEnv(DatasourceEnvVar(id)); ok && !isBlankOrPlaceholder(v) {
		return v
	}
	defURL, ok := m.store.GetExplicit(props.ProfileKey(defaultID, profile.SuffixJDBCURL))
	if !ok {
		return ""
	}
	rewritten, err := dbname.Rewrite(defURL, id)
	if err != nil {
		return ""
	}
	return rewritten
}

// generateFor derives the tenant's missing properties from the default
// tenant template into the generated map. Explicitly-set properties are
// never overwritten: the generated layer is the lowest-priority source.
func (m *Materializer) generateFor(id, defaultID string, generated map[string]string) {
	for _, suffix := range profile.Suffixes {
		key := props.ProfileKey(id, suffix)
		if _, ok := m.store.GetExplicit(key); ok {
			continue
		}

		switch suffix {
		case profile.SuffixTenantID, profile.SuffixTenantName, profile.SuffixAccountName:
			generated[key] = id
			continue
		}

		defVal, ok := m.store.GetExplicit(props.ProfileKey(defaultID, suffix))
		if !ok || id == defaultID {
			continue
		}

		switch {
		case suffix == profile.SuffixJDBCURL:
			if v, ok := m.lookupEnv(DatasourceEnvVar(id)); ok && !isBlankOrPlaceholder(v) {
				generated[key] = v
				continue
			}
			rewritten, err := dbname.Rewrite(defVal, id)
			if err != nil {
				m.log.Warn("cannot derive jdbc-url from default tenant",
					"tenant_id", id, "error", err)
				continue
			}
			generated[key] = rewritten
		case strings.Contains(defVal, "/default/"):
			// Template-style paths point at the default tenant's tree;
			// repoint the path segment at this tenant.
			generated[key] = strings.ReplaceAll(defVal, "/default/", "/"+id+"/")
		default:
			generated[key] = defVal
		}
	}
}

// DatasourceEnvVar builds the tenant-specific datasource environment
// variable name, e.g. "acme-eu" -> "ACME_EU_POSTGRES_DATASOURCE".
func DatasourceEnvVar(tenantID string) string {
	return strings.ToUpper(strings.ReplaceAll(tenantID, "-", "_")) + EnvDatasourceSuffix
}

func isBlankOrPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == props.Placeholder
}
