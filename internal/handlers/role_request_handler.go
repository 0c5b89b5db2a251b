package handlers

import (
	"net/http"

	"catalog-core/internal/middleware"
	"catalog-core/internal/models"
	"catalog-core/internal/service"
)

// RoleRequestHandler serves the role request workflow
type RoleRequestHandler struct {
	requestService *service.RoleRequestService
}

// NewRoleRequestHandler creates a new role request handler
func NewRoleRequestHandler(requestService *service.RoleRequestService) *RoleRequestHandler {
	return &RoleRequestHandler{requestService: requestService}
}

type submitRequest struct {
	Role          string `json:"role"`
	Justification string `json:"justification"`
}

// Submit creates a pending role request for the caller
// POST /api/v1/role-requests
func (h *RoleRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	request, err := h.requestService.Submit(actor.AccountID, models.Role(req.Role), req.Justification)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// Get returns a single request; accounts see their own, admins see any
// GET /api/v1/role-requests/{id}
func (h *RoleRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := h.requestService.Get(id, actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// ListPending returns the admin review queue
// GET /api/v1/role-requests/pending
func (h *RoleRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	requests, err := h.requestService.ListPending(actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	if requests == nil {
		requests = []models.RoleRequest{}
	}

	respondJSON(w, http.StatusOK, requests)
}

// Approve approves a pending request and grants the role
// POST /api/v1/role-requests/{id}/approve
func (h *RoleRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := h.requestService.Approve(id, actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject rejects a pending request
// POST /api/v1/role-requests/{id}/reject
func (h *RoleRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req rejectRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	request, err := h.requestService.Reject(id, actor.AccountID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

type grantRequest struct {
	AccountID uint   `json:"account_id"`
	Role      string `json:"role"`
}

// Grant inserts a grant directly, bypassing the request workflow
// POST /api/v1/admin/grants
func (h *RoleRequestHandler) Grant(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req grantRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	grant, err := h.requestService.Grant(req.AccountID, models.Role(req.Role), actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, grant)
}

// Revoke deletes a grant
// DELETE /api/v1/admin/grants
func (h *RoleRequestHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req grantRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.requestService.Revoke(req.AccountID, models.Role(req.Role), actor.AccountID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Role revoked"})
}
