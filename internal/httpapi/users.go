package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"uidam/internal/domain"
	"uidam/internal/service"
)

type usersHandler struct {
	svc *service.Users
	log *slog.Logger
}

func (h *usersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !decodeBody(w, r, &in) {
		return
	}

	u, err := h.svc.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *usersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *usersHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.UserFilter{
		Status:   domain.UserStatus(q.Get("status")),
		UserName: q.Get("user_name"),
		Email:    q.Get("email"),
		Limit:    intQuery(q.Get("limit"), 50),
		Offset:   intQuery(q.Get("offset"), 0),
	}

	users, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *usersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in service.UpdateUserInput
	if !decodeBody(w, r, &in) {
		return
	}

	u, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *usersHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id, in.CurrentPassword, in.NewPassword); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *usersHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_request",
			Message: "invalid id",
		})
		return uuid.UUID{}, false
	}
	return id, true
}

func intQuery(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
