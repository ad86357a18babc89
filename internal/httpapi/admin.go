package httpapi

import (
	"log/slog"
	"net/http"

	"uidam/internal/tenant/refresh"
)

type adminHandler struct {
	refresh RefreshHandler
	log     *slog.Logger
}

// refreshConfig triggers a configuration-change event. The body may
// name the changed keys; an empty body refreshes all watched keys.
func (h *adminHandler) refreshConfig(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ChangedKeys []string `json:"changed_keys"`
	}
	// Body is optional.
	_ = decodeBodyLenient(r, &in)

	keys := in.ChangedKeys
	if len(keys) == 0 {
		keys = refresh.WatchedKeys
	}

	h.log.InfoContext(r.Context(), "manual configuration refresh requested", "keys", keys)
	h.refresh.HandleChange(r.Context(), keys)
	respondJSON(w, http.StatusAccepted, map[string]any{"refreshed_keys": keys})
}
