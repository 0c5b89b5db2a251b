package handlers

import (
	"net/http"

	"catalog-core/internal/middleware"
	"catalog-core/internal/models"
	"catalog-core/internal/service"
)

// RoleHandler serves role resolution and active-role selection
type RoleHandler struct {
	resolver *service.RoleResolver
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(resolver *service.RoleResolver) *RoleHandler {
	return &RoleHandler{resolver: resolver}
}

type rolesResponse struct {
	Roles             []models.Role `json:"roles"`
	HighestRole       *models.Role  `json:"highest_role,omitempty"`
	ActiveRole        *models.Role  `json:"active_role,omitempty"`
	RequiresSelection bool          `json:"requires_selection"`
}

// GetMyRoles returns the caller's resolved roles and selection state
// GET /api/v1/roles
func (h *RoleHandler) GetMyRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	resp := rolesResponse{
		Roles:             actor.Roles.Slice(),
		ActiveRole:        actor.ActiveRole,
		RequiresSelection: actor.RequiresRoleSelection(),
	}
	if highest, ok := actor.Roles.HighestRole(); ok {
		resp.HighestRole = &highest
	}
	if resp.Roles == nil {
		resp.Roles = []models.Role{}
	}

	respondJSON(w, http.StatusOK, resp)
}

type selectRoleRequest struct {
	Role string `json:"role"`
}

// SelectActiveRole stores the session's active-role selection
// POST /api/v1/session/role
func (h *RoleHandler) SelectActiveRole(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	var req selectRoleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.resolver.SelectActiveRole(session.ID, session.AccountID, role); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]models.Role{"active_role": role})
}
