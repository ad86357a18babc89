package profile

import (
	"fmt"
	"strconv"
	"time"

	"uidam/internal/props"
)

// Pool construction defaults applied when a tenant does not configure
// the corresponding property.
const (
	defaultMinPoolSize       = int32(2)
	defaultMaxPoolSize       = int32(10)
	defaultConnectionTimeout = 30 * time.Second
	defaultMaxIdleTime       = 10 * time.Minute
)

// Resolver builds tenant profiles from the layered property store. Each
// individual key follows the store's fixed source precedence; the
// resolver only assembles typed records out of resolved values.
type Resolver struct {
	store *props.Store
}

// NewResolver creates a profile resolver over the given store.
func NewResolver(store *props.Store) *Resolver {
	return &Resolver{store: store}
}

// Get resolves the complete profile for a tenant. It returns
// ErrProfileNotFound when no property at all exists in the tenant's
// namespace — including for the default tenant.
func (r *Resolver) Get(tenantID string) (*Profile, error) {
	if !r.exists(tenantID) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, tenantID)
	}

	p := &Profile{
		TenantID:    r.get(tenantID, SuffixTenantID),
		TenantName:  r.get(tenantID, SuffixTenantName),
		AccountName: r.get(tenantID, SuffixAccountName),
		Database:    r.database(tenantID),
		Email: EmailSettings{
			Provider:    r.get(tenantID, SuffixEmailProvider),
			Host:        r.get(tenantID, SuffixEmailHost),
			Port:        r.intOr(tenantID, SuffixEmailPort, 587),
			Username:    r.get(tenantID, SuffixEmailUsername),
			Password:    r.get(tenantID, SuffixEmailPassword),
			From:        r.get(tenantID, SuffixEmailFrom),
			ServerToken: r.get(tenantID, SuffixEmailServerToken),
		},
		Template: TemplateSettings{
			Path:   r.get(tenantID, SuffixTemplatePath),
			Format: r.get(tenantID, SuffixTemplateFormat),
		},
		Client: ClientSettings{
			RegistrationSecret: r.get(tenantID, SuffixClientSecret),
		},
	}
	if p.TenantID == "" {
		p.TenantID = tenantID
	}
	return p, nil
}

// Database resolves only the datasource section of a tenant's profile.
// Unlike Get it does not require the whole profile to exist; the caller
// decides how to treat missing required fields.
func (r *Resolver) Database(tenantID string) DatabaseProperties {
	return r.database(tenantID)
}

func (r *Resolver) database(tenantID string) DatabaseProperties {
	poolName := r.get(tenantID, SuffixPoolName)
	if poolName == "" {
		poolName = "uidam-" + tenantID
	}

	driver := r.get(tenantID, SuffixDriverClassName)
	if driver == "" {
		driver = DefaultDriverClassName
	}

	return DatabaseProperties{
		JDBCURL:           r.get(tenantID, SuffixJDBCURL),
		Username:          r.get(tenantID, SuffixUsername),
		Password:          r.get(tenantID, SuffixPassword),
		DriverClassName:   driver,
		MinPoolSize:       int32(r.intOr(tenantID, SuffixMinPoolSize, int(defaultMinPoolSize))),
		MaxPoolSize:       int32(r.intOr(tenantID, SuffixMaxPoolSize, int(defaultMaxPoolSize))),
		ConnectionTimeout: r.millisOr(tenantID, SuffixConnectionTimeout, defaultConnectionTimeout),
		MaxIdleTime:       r.millisOr(tenantID, SuffixMaxIdleTime, defaultMaxIdleTime),
		PoolName:          poolName,
	}
}

// exists reports whether the tenant has any configuration at all. Marker
// keys are checked by constructed name rather than scanning sources.
func (r *Resolver) exists(tenantID string) bool {
	for _, suffix := range []string{SuffixJDBCURL, SuffixTenantID, SuffixUsername} {
		if _, ok := r.store.Get(props.ProfileKey(tenantID, suffix)); ok {
			return true
		}
	}
	return false
}

func (r *Resolver) get(tenantID, suffix string) string {
	v, _ := r.store.Get(props.ProfileKey(tenantID, suffix))
	return v
}

func (r *Resolver) intOr(tenantID, suffix string, def int) int {
	v, ok := r.store.Get(props.ProfileKey(tenantID, suffix))
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (r *Resolver) millisOr(tenantID, suffix string, def time.Duration) time.Duration {
	v, ok := r.store.Get(props.ProfileKey(tenantID, suffix))
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}
