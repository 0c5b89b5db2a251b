package access

import (
	"testing"

	"catalog-core/internal/models"
)

func actorWith(id uint, active *models.Role, roles ...models.Role) Actor {
	return Actor{
		AccountID:  id,
		Roles:      models.NewRoleSet(roles...),
		ActiveRole: active,
	}
}

func rolePtr(r models.Role) *models.Role {
	return &r
}

func TestEvaluateUnauthenticated(t *testing.T) {
	req := Requirement{RequireAuth: true, AllowedRoles: []models.Role{models.RoleAdmin}}
	result := Evaluate(req, Actor{})

	if result.Decision != DecisionDeny {
		t.Fatalf("Expected deny, got %v", result.Decision)
	}
	if result.Reason != ReasonUnauthenticated {
		t.Errorf("Expected unauthenticated reason, got %s", result.Reason)
	}
}

func TestEvaluateRedirectsPendingSelection(t *testing.T) {
	// Multi-role actor with no active role gets redirected before role
	// membership is even checked.
	actor := actorWith(1, nil, models.RoleAdmin, models.RoleReviewer)
	req := Requirement{RequireAuth: true, AllowedRoles: []models.Role{models.RoleAdmin}}

	result := Evaluate(req, actor)
	if result.Decision != DecisionRedirect {
		t.Errorf("Expected redirect, got %v", result.Decision)
	}
}

func TestEvaluateSelectionEntryPointReachable(t *testing.T) {
	actor := actorWith(1, nil, models.RoleAdmin, models.RoleReviewer)
	req := Requirement{RequireAuth: true, AtRoleSelection: true}

	result := Evaluate(req, actor)
	if result.Decision != DecisionAllow {
		t.Errorf("Role selection endpoint should stay reachable, got %v", result.Decision)
	}
}

func TestEvaluateSingleRoleNeedsNoSelection(t *testing.T) {
	actor := actorWith(1, nil, models.RoleReviewer)
	req := Requirement{RequireAuth: true, AllowedRoles: []models.Role{models.RoleReviewer}}

	result := Evaluate(req, actor)
	if result.Decision != DecisionAllow {
		t.Errorf("Single-role actor should not be redirected, got %v", result.Decision)
	}
}

func TestEvaluateForbidden(t *testing.T) {
	actor := actorWith(1, rolePtr(models.RoleCompany), models.RoleCompany)
	req := Requirement{RequireAuth: true, AllowedRoles: []models.Role{models.RoleAdmin}}

	result := Evaluate(req, actor)
	if result.Decision != DecisionDeny || result.Reason != ReasonForbidden {
		t.Errorf("Expected forbidden deny, got (%v, %s)", result.Decision, result.Reason)
	}
}

func TestEvaluateWrongActiveRole(t *testing.T) {
	// Holds the role but is operating under a different active role. The
	// reason distinguishes "switch roles" from "not allowed at all".
	actor := actorWith(1, rolePtr(models.RoleReviewer), models.RoleAdmin, models.RoleReviewer)
	req := Requirement{
		RequireAuth:       true,
		AllowedRoles:      []models.Role{models.RoleAdmin},
		RequireActiveRole: true,
	}

	result := Evaluate(req, actor)
	if result.Decision != DecisionDeny || result.Reason != ReasonWrongActiveRole {
		t.Errorf("Expected wrong_active_role deny, got (%v, %s)", result.Decision, result.Reason)
	}

	// Switching the active role makes the same request pass.
	actor.ActiveRole = rolePtr(models.RoleAdmin)
	result = Evaluate(req, actor)
	if result.Decision != DecisionAllow {
		t.Errorf("Expected allow after switching active role, got %v", result.Decision)
	}
}

func TestEvaluateCoarseMembershipIgnoresActiveRole(t *testing.T) {
	actor := actorWith(1, rolePtr(models.RoleReviewer), models.RoleAdmin, models.RoleReviewer)
	req := Requirement{RequireAuth: true, AllowedRoles: []models.Role{models.RoleAdmin}}

	result := Evaluate(req, actor)
	if result.Decision != DecisionAllow {
		t.Errorf("Coarse membership check should pass regardless of active role, got %v", result.Decision)
	}
}

func TestRequireRole(t *testing.T) {
	if r := RequireRole(Actor{}, models.RoleAdmin); r.Reason != ReasonUnauthenticated {
		t.Errorf("Expected unauthenticated, got %s", r.Reason)
	}

	actor := actorWith(1, nil, models.RoleReviewer)
	if r := RequireRole(actor, models.RoleAdmin); r.Reason != ReasonForbidden {
		t.Errorf("Expected forbidden, got %s", r.Reason)
	}

	// Pending role selection does not strip capabilities at this level.
	multi := actorWith(2, nil, models.RoleAdmin, models.RoleReviewer)
	if r := RequireRole(multi, models.RoleAdmin); r.Decision != DecisionAllow {
		t.Errorf("Expected allow for held role, got %v", r.Decision)
	}
}

func TestRequiresRoleSelection(t *testing.T) {
	if actorWith(1, nil, models.RoleReviewer).RequiresRoleSelection() {
		t.Error("Single-role actor should not require selection")
	}
	if !actorWith(1, nil, models.RoleAdmin, models.RoleReviewer).RequiresRoleSelection() {
		t.Error("Multi-role actor without selection should require it")
	}
	if actorWith(1, rolePtr(models.RoleAdmin), models.RoleAdmin, models.RoleReviewer).RequiresRoleSelection() {
		t.Error("Actor with a selected role should not require selection")
	}
}
