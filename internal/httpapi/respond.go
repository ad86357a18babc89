package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"uidam/internal/notify"
	"uidam/internal/repository"
	"uidam/internal/service"
	"uidam/internal/tenant/profile"
	"uidam/internal/tenant/router"
)

// errorResponse is the standard JSON error body.
type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondError maps service and tenant-routing errors to HTTP status
// codes. A tenant whose datasource is not configured yields a server
// error, never a silent fallback to another tenant's data.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var valErr service.ValidationError
	switch {
	case errors.As(err, &valErr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "validation_error",
			Message: "validation failed",
			Details: valErr,
		})
	case errors.Is(err, repository.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{
			Code:    "not_found",
			Message: "record not found",
		})
	case errors.Is(err, repository.ErrDuplicate):
		respondJSON(w, http.StatusConflict, errorResponse{
			Code:    "conflict",
			Message: "record already exists",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondJSON(w, http.StatusForbidden, errorResponse{
			Code:    "invalid_credentials",
			Message: "invalid credentials",
		})
	case errors.Is(err, router.ErrDatasourceNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, notify.ErrProviderNotConfigured):
		log.ErrorContext(r.Context(), "tenant configuration error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "tenant_not_configured",
			Message: "tenant is not configured for this operation",
		})
	default:
		log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "internal_error",
			Message: "internal server error",
		})
	}
}

// decodeBodyLenient decodes a JSON body but tolerates an empty one.
func decodeBodyLenient(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "bad_request",
			Message: "invalid request body",
		})
		return false
	}
	return true
}
