// Command uidam runs the user/account management service.
//
// Startup is an explicit sequence: load configuration, assemble the
// layered property store, materialize tenant properties, build the
// datasource router, run per-tenant schema migrations, then serve.
// SIGHUP and the admin refresh endpoint feed configuration-change
// events into the refresh listener at runtime.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"uidam/internal/audit"
	"uidam/internal/config"
	"uidam/internal/httpapi"
	"uidam/internal/httpserver"
	"uidam/internal/notify"
	"uidam/internal/pg"
	"uidam/internal/props"
	redisx "uidam/internal/redis"
	"uidam/internal/repository"
	"uidam/internal/service"
	"uidam/internal/tenant"
	"uidam/internal/tenant/materialize"
	"uidam/internal/tenant/profile"
	"uidam/internal/tenant/refresh"
	"uidam/internal/tenant/router"
)

func main() {
	var appCfg config.App
	config.MustLoad(&appCfg)
	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	log := newLogger(appCfg.LogLevel)
	slog.SetDefault(log)

	if err := run(context.Background(), appCfg, httpCfg, log); err != nil {
		log.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg config.App, httpCfg httpserver.Config, log *slog.Logger) error {
	yamlSrc, err := props.LoadYAMLSource(appCfg.TenantsFile)
	if err != nil {
		return err
	}
	store := props.NewStore(
		yamlSrc,
		props.NewFileSource(appCfg.TenantPropertyDir),
		props.NewEnvSource(),
	)

	tenant.SetDefault(store.GetDefault(props.KeyDefaultTenantID, tenant.DefaultID))

	// Phase 1: materialize tenant properties. Runs before anything else
	// touches tenant configuration.
	materializer := materialize.New(store, materialize.WithLogger(log))
	active, err := materializer.Run()
	if err != nil {
		return err
	}
	log.Info("tenant properties materialized", "active_tenants", active)

	// Phase 2: build the datasource router over the active tenant set.
	resolver := profile.NewResolver(store)
	rtr := router.New(resolver, router.WithLogger(log))
	if err := rtr.Build(ctx, active, materializer.DefaultTenant()); err != nil {
		return err
	}
	defer rtr.Close()

	// Phase 3: per-tenant schema migrations before accepting traffic.
	for _, id := range rtr.Tenants() {
		dsn, err := pg.DSN(resolver.Database(id))
		if err != nil {
			log.Error("cannot derive migration dsn", "tenant_id", id, "error", err)
			continue
		}
		if err := pg.Migrate(ctx, dsn, appCfg.MigrationsPath, appCfg.MigrationsTable, log.With("tenant_id", id)); err != nil {
			log.Error("tenant migration failed", "tenant_id", id, "error", err)
		}
	}

	notifStore := notify.Storage(notify.NewMemoryStorage())
	if appCfg.RedisURL != "" {
		var redisCfg redisx.Config
		config.MustLoad(&redisCfg)
		client, err := redisx.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		notifStore = notify.NewRedisStorage(client)
	}

	mailer := notify.NewRegistry(resolver)
	auditor := audit.NewRecorder(repository.NewAuditLog(rtr), log)
	usersSvc := service.NewUsers(
		repository.NewUsers(rtr), auditor, mailer,
		notify.NewRenderer(), resolver, notifStore, log,
	)
	accountsSvc := service.NewAccounts(repository.NewAccounts(rtr), auditor)

	listener := refresh.New(store, resolver, rtr, materializer, refresh.WithLogger(log))
	listener.InitializePropertyCache()
	refresher := &cacheClearingRefresher{listener: listener, mailer: mailer}

	go watchSighup(ctx, refresher, log)

	handler := httpapi.NewRouter(httpapi.Deps{
		Users:         usersSvc,
		Accounts:      accountsSvc,
		Notifications: httpapi.NewNotificationsHandler(notifStore),
		Refresh:       refresher,
		Health:        defaultPoolHealth(rtr),
		Log:           log,
	})

	return httpserver.New(httpCfg, log).Run(ctx, handler)
}

// cacheClearingRefresher forwards change events to the listener and
// invalidates derived per-tenant caches afterwards, since tenant email
// settings may have changed.
type cacheClearingRefresher struct {
	listener *refresh.Listener
	mailer   *notify.Registry
}

func (r *cacheClearingRefresher) HandleChange(ctx context.Context, changedKeys []string) {
	r.listener.HandleChange(ctx, changedKeys)
	r.mailer.ClearAllCache()
}

// watchSighup turns SIGHUP into a full refresh event over all watched keys.
func watchSighup(ctx context.Context, refresher httpapi.RefreshHandler, log *slog.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			log.Info("received SIGHUP, refreshing configuration")
			refresher.HandleChange(ctx, refresh.WatchedKeys)
		}
	}
}

func defaultPoolHealth(rtr *router.Router) func(context.Context) error {
	return func(ctx context.Context) error {
		db, ok := rtr.Default()
		if !ok {
			return router.ErrNoTenantsConfigured
		}
		return pg.Healthcheck(db)(ctx)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
