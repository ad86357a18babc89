package httpapi

import (
	"log/slog"
	"net/http"

	"uidam/internal/service"
)

type accountsHandler struct {
	svc *service.Accounts
	log *slog.Logger
}

func (h *accountsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccountInput
	if !decodeBody(w, r, &in) {
		return
	}

	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *accountsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *accountsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accounts, err := h.svc.List(r.Context(), intQuery(q.Get("limit"), 50), intQuery(q.Get("offset"), 0))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *accountsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in service.UpdateAccountInput
	if !decodeBody(w, r, &in) {
		return
	}

	a, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *accountsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
