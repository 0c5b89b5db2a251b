// Package access implements the guard that sits in front of every protected
// operation. Evaluate is a pure function: the actor's identity, resolved
// roles and per-session active role are passed in explicitly on every call,
// never read from process-wide state.
package access

import (
	"catalog-core/internal/models"
)

// Decision is the outcome of an access check
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDeny
	DecisionRedirect
)

// DenyReason distinguishes why access was denied. WrongActiveRole means the
// account could proceed by switching its active role; Forbidden means it
// could not.
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonForbidden       DenyReason = "forbidden"
	ReasonWrongActiveRole DenyReason = "wrong_active_role"
)

// Actor is the authenticated caller as seen by the guard. A zero AccountID
// means no authenticated account is present.
type Actor struct {
	AccountID  uint
	Roles      models.RoleSet
	ActiveRole *models.Role
}

// Authenticated reports whether an account is present
func (a Actor) Authenticated() bool {
	return a.AccountID != 0
}

// RequiresRoleSelection reports whether the actor must pick an active role
// before using role-gated features: it holds more than one role and has not
// selected one this session.
func (a Actor) RequiresRoleSelection() bool {
	return len(a.Roles) > 1 && a.ActiveRole == nil
}

// Requirement declares what an operation demands of its caller
type Requirement struct {
	RequireAuth       bool
	AllowedRoles      []models.Role
	RequireActiveRole bool
	// AtRoleSelection marks the role-selection entry point itself, which
	// must stay reachable for actors who still have to pick a role.
	AtRoleSelection bool
}

// Result of an access check
type Result struct {
	Decision Decision
	Reason   DenyReason
}

// Evaluate runs the ordered checks: authentication, then pending role
// selection, then coarse role membership, then active-role match. Each
// earlier failure short-circuits the later checks.
func Evaluate(req Requirement, actor Actor) Result {
	if req.RequireAuth && !actor.Authenticated() {
		return Result{Decision: DecisionDeny, Reason: ReasonUnauthenticated}
	}

	if actor.RequiresRoleSelection() && !req.AtRoleSelection {
		return Result{Decision: DecisionRedirect}
	}

	if len(req.AllowedRoles) > 0 {
		if !actor.Roles.Intersects(req.AllowedRoles) {
			return Result{Decision: DecisionDeny, Reason: ReasonForbidden}
		}
		if req.RequireActiveRole {
			if actor.ActiveRole == nil || !roleAllowed(*actor.ActiveRole, req.AllowedRoles) {
				return Result{Decision: DecisionDeny, Reason: ReasonWrongActiveRole}
			}
		}
	}

	return Result{Decision: DecisionAllow}
}

// RequireRole is the coarse service-level gate: the actor must be
// authenticated and hold any of the given roles. The session's selection
// state is ignored here; pending role selection only redirects navigation,
// it does not strip capabilities.
func RequireRole(actor Actor, roles ...models.Role) Result {
	if !actor.Authenticated() {
		return Result{Decision: DecisionDeny, Reason: ReasonUnauthenticated}
	}
	if !actor.Roles.Intersects(roles) {
		return Result{Decision: DecisionDeny, Reason: ReasonForbidden}
	}
	return Result{Decision: DecisionAllow}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
