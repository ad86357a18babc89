package router

import "errors"

var (
	// ErrDatasourceNotFound is returned when a tenant id resolves to no
	// registry entry. Failing closed here prevents cross-tenant data
	// leakage; the request must error rather than use another tenant's pool.
	ErrDatasourceNotFound = errors.New("no datasource configured for tenant")

	// ErrIncompleteDatasource is returned when required datasource
	// properties are missing for a tenant.
	ErrIncompleteDatasource = errors.New("incomplete datasource configuration")

	// ErrNoTenantsConfigured fails startup when not a single tenant
	// produced a working datasource.
	ErrNoTenantsConfigured = errors.New("no tenant datasources configured")
)
