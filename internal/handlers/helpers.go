package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"catalog-core/internal/apperrors"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps an error kind onto its HTTP status and surfaces the
// message verbatim, as callers are expected to show it to the acting user.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

// errorStatus maps the error kinds onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// pathID extracts a numeric path variable
func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.Validationf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// decodeBody decodes a JSON request body
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validationf("invalid request body")
	}
	return nil
}
