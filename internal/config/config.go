package config

// App holds service-level settings that are not part of the tenant
// property store. Tenant topology itself (tenant ids, per-tenant
// database credentials and so on) lives in the layered property store,
// not here.
type App struct {
	Name     string `env:"APP_NAME" envDefault:"uidam"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // debug, info, warn, error

	// TenantsFile is the structured per-tenant properties file. It is the
	// highest-precedence source in the property store.
	TenantsFile string `env:"UIDAM_TENANTS_FILE" envDefault:"config/tenants.yaml"`

	// TenantPropertyDir holds optional per-tenant property files named
	// {tenantID}.properties in dotenv format.
	TenantPropertyDir string `env:"UIDAM_TENANT_PROPERTY_DIR" envDefault:"config/tenants"`

	// TemplateDir is the root of notification templates. Per-tenant
	// template paths are derived from the default tenant's path.
	TemplateDir string `env:"UIDAM_TEMPLATE_DIR" envDefault:"templates"`

	MigrationsPath  string `env:"UIDAM_MIGRATIONS_PATH" envDefault:"internal/db/migrations"`
	MigrationsTable string `env:"UIDAM_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	// RedisURL enables the Redis notification store when set. Leave empty
	// to fall back to the in-memory store.
	RedisURL string `env:"REDIS_URL"`
}
