// Package profile resolves per-tenant configuration profiles from the
// layered property store under the canonical namespace
// "tenants.profile.{tenantId}.{suffix}".
package profile

import (
	"time"
)

// Property suffixes under the per-tenant namespace. The materializer
// walks this universe when inheriting missing values from the default
// tenant, so every suffix listed here participates in inheritance.
const (
	SuffixJDBCURL           = "jdbc-url"
	SuffixUsername          = "username"
	SuffixPassword          = "password"
	SuffixDriverClassName   = "driver-class-name"
	SuffixMinPoolSize       = "min-pool-size"
	SuffixMaxPoolSize       = "max-pool-size"
	SuffixConnectionTimeout = "connection-timeout-ms"
	SuffixMaxIdleTime       = "max-idle-time"
	SuffixPoolName          = "pool-name"
	SuffixTenantID          = "tenant-id"
	SuffixTenantName        = "tenant-name"
	SuffixAccountName       = "account-name"
	SuffixEmailProvider     = "email.provider"
	SuffixEmailHost         = "email.host"
	SuffixEmailPort         = "email.port"
	SuffixEmailUsername     = "email.username"
	SuffixEmailPassword     = "email.password"
	SuffixEmailFrom         = "email.from"
	SuffixEmailServerToken  = "email.server-token"
	SuffixTemplatePath      = "template.path"
	SuffixTemplateFormat    = "template.format"
	SuffixClientSecret      = "client.registration-secret"
)

// Suffixes is the full per-tenant property universe, in a stable order.
var Suffixes = []string{
	SuffixJDBCURL,
	SuffixUsername,
	SuffixPassword,
	SuffixDriverClassName,
	SuffixMinPoolSize,
	SuffixMaxPoolSize,
	SuffixConnectionTimeout,
	SuffixMaxIdleTime,
	SuffixPoolName,
	SuffixTenantID,
	SuffixTenantName,
	SuffixAccountName,
	SuffixEmailProvider,
	SuffixEmailHost,
	SuffixEmailPort,
	SuffixEmailUsername,
	SuffixEmailPassword,
	SuffixEmailFrom,
	SuffixEmailServerToken,
	SuffixTemplatePath,
	SuffixTemplateFormat,
	SuffixClientSecret,
}

// Email provider names.
const (
	EmailProviderInternal = "internal"
	EmailProviderPostmark = "postmark"
)

// DefaultDriverClassName is assumed when a tenant does not configure a
// driver explicitly. Only the Postgres driver is supported.
const DefaultDriverClassName = "org.postgresql.Driver"

// DatabaseProperties describes one tenant's datasource configuration.
type DatabaseProperties struct {
	JDBCURL           string
	Username          string
	Password          string
	DriverClassName   string
	MinPoolSize       int32
	MaxPoolSize       int32
	ConnectionTimeout time.Duration
	MaxIdleTime       time.Duration
	PoolName          string
}

// MissingFields names the required fields that are absent. A datasource
// may only be built when this is empty.
func (p DatabaseProperties) MissingFields() []string {
	var missing []string
	if p.JDBCURL == "" {
		missing = append(missing, SuffixJDBCURL)
	}
	if p.Username == "" {
		missing = append(missing, SuffixUsername)
	}
	if p.Password == "" {
		missing = append(missing, SuffixPassword)
	}
	return missing
}

// EmailSettings describes a tenant's notification provider.
type EmailSettings struct {
	Provider    string
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ServerToken string // postmark provider only
}

// TemplateSettings describes where a tenant's notification templates live.
type TemplateSettings struct {
	Path   string
	Format string
}

// ClientSettings holds client-registration secrets for a tenant.
type ClientSettings struct {
	RegistrationSecret string
}

// Profile is the complete per-tenant configuration record. One Profile
// exists per tenant identifier; the default tenant's profile serves as
// the inheritance template during materialization.
type Profile struct {
	TenantID    string
	TenantName  string
	AccountName string
	Database    DatabaseProperties
	Email       EmailSettings
	Template    TemplateSettings
	Client      ClientSettings
}
