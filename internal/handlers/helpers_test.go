package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-core/internal/apperrors"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validationf("bad input"), http.StatusBadRequest},
		{apperrors.ErrUnauthenticated, http.StatusUnauthorized},
		{apperrors.PermissionDeniedf("not an admin"), http.StatusForbidden},
		{apperrors.NotFoundf("task 1 not found"), http.StatusNotFound},
		{apperrors.Conflictf("already assigned"), http.StatusConflict},
		{apperrors.InvalidStatef("already approved"), http.StatusConflict},
		{apperrors.InvalidTransitionf("backwards"), http.StatusUnprocessableEntity},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, apperrors.Conflictf("product 100 already has an active review assignment"))

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
	// The message reaches the client verbatim.
	want := `{"error":"product 100 already has an active review assignment: conflict"}`
	if got := rec.Body.String(); got != want+"\n" {
		t.Errorf("Body = %q, want %q", got, want)
	}
}
