package middleware

import (
	"net/http"

	"catalog-core/internal/access"
	"catalog-core/internal/models"
)

// RoleSelectionPath is where multi-role accounts pick their active role
const RoleSelectionPath = "/api/v1/session/role"

// GuardMiddleware adapts the access guard to HTTP. The decision itself is
// pure; this layer only translates it into status codes.
type GuardMiddleware struct{}

// NewGuardMiddleware creates a new guard middleware
func NewGuardMiddleware() *GuardMiddleware {
	return &GuardMiddleware{}
}

// Require evaluates the requirement against the actor resolved by the auth
// middleware. Redirect decisions point the caller at the role-selection
// endpoint.
func (m *GuardMiddleware) Require(req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := GetActor(r)

			result := access.Evaluate(req, actor)
			switch result.Decision {
			case access.DecisionAllow:
				next.ServeHTTP(w, r)
			case access.DecisionRedirect:
				w.Header().Set("Location", RoleSelectionPath)
				respondWithError(w, http.StatusConflict, "Active role selection required")
			default:
				switch result.Reason {
				case access.ReasonUnauthenticated:
					respondWithError(w, http.StatusUnauthorized, "Not authenticated")
				case access.ReasonWrongActiveRole:
					respondWithError(w, http.StatusForbidden, "Operation not available for the selected role")
				default:
					respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				}
			}
		})
	}
}

// RequireRole gates a route on the account holding any of the given roles
func (m *GuardMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return m.Require(access.Requirement{
		RequireAuth:  true,
		AllowedRoles: roles,
	})
}

// RequireActiveRole additionally demands that the session's selected role,
// not just any held role, is in the allowed set.
func (m *GuardMiddleware) RequireActiveRole(roles ...models.Role) func(http.Handler) http.Handler {
	return m.Require(access.Requirement{
		RequireAuth:       true,
		AllowedRoles:      roles,
		RequireActiveRole: true,
	})
}
