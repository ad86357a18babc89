package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"uidam/internal/notify"
	"uidam/internal/tenant"
)

type notificationsHandler struct {
	storage notify.Storage
	log     *slog.Logger
}

// NewNotificationsHandler exposes the in-app notification store.
func NewNotificationsHandler(storage notify.Storage) *notificationsHandler {
	return &notificationsHandler{storage: storage}
}

func (h *notificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_request",
			Message: "user_id query parameter is required",
		})
		return
	}

	items, err := h.storage.List(r.Context(), tenant.CurrentID(r.Context()), userID,
		intQuery(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *notificationsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID uuid.UUID   `json:"user_id"`
		IDs    []uuid.UUID `json:"ids"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := h.storage.MarkRead(r.Context(), tenant.CurrentID(r.Context()), in.UserID, in.IDs...); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
