// Package httpapi exposes the REST surface: user and account CRUD,
// in-app notifications, health, and the admin refresh endpoint. The
// tenant middleware binds the tenant identity to the request context
// before any handler runs, so every repository call downstream routes
// to the right database.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"uidam/internal/service"
	"uidam/internal/tenant"
)

// RefreshHandler consumes configuration-change events; the refresh
// listener satisfies it.
type RefreshHandler interface {
	HandleChange(ctx context.Context, changedKeys []string)
}

// Deps carries the handler dependencies.
type Deps struct {
	Users         *service.Users
	Accounts      *service.Accounts
	Notifications *notificationsHandler
	Refresh       RefreshHandler
	Health        func(context.Context) error
	Log           *slog.Logger
}

// NewRouter assembles the chi router.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(d.Health, log))

	r.Route("/v1", func(r chi.Router) {
		// Header-addressed form: /v1/users with X-Tenant-ID.
		r.Group(func(r chi.Router) {
			r.Use(tenant.Middleware(tenant.NewHeaderResolver("X-Tenant-ID"), log))
			mountResources(r, d, log)
		})

		// Path-addressed form: /v1/tenants/{id}/users. The tenant id sits
		// at the third path segment; the header still wins as a fallback
		// when the segment is somehow empty.
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(tenant.Middleware(tenant.NewCompositeResolver(
				tenant.NewPathResolver(3),
				tenant.NewHeaderResolver("X-Tenant-ID"),
			), log))
			mountResources(r, d, log)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		h := &adminHandler{refresh: d.Refresh, log: log}
		r.Post("/config/refresh", h.refreshConfig)
	})

	return r
}

// mountResources registers the tenant-scoped resource routes. It is
// called once per addressing form, so handlers must register the same
// way each time.
func mountResources(r chi.Router, d Deps, log *slog.Logger) {
	r.Route("/users", func(r chi.Router) {
		h := &usersHandler{svc: d.Users, log: log}
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/password", h.changePassword)
	})

	r.Route("/accounts", func(r chi.Router) {
		h := &accountsHandler{svc: d.Accounts, log: log}
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	if d.Notifications != nil {
		d.Notifications.log = log
		r.Get("/notifications", d.Notifications.list)
		r.Post("/notifications/read", d.Notifications.markRead)
	}
}

func healthHandler(check func(context.Context) error, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "healthcheck failed", "error", err)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"status": "NOT_READY"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "READY"})
	}
}
