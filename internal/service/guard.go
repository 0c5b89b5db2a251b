package service

import (
	"catalog-core/internal/access"
	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// requireRole gates a service operation on the actor currently holding one
// of the given roles, resolved against the store at call time.
func requireRole(resolver *RoleResolver, accountID uint, roles ...models.Role) error {
	actor, err := resolver.ActorFor(accountID, nil)
	if err != nil {
		return err
	}
	return decisionErr(access.RequireRole(actor, roles...))
}

// decisionErr maps a guard result onto the error kinds callers classify on
func decisionErr(result access.Result) error {
	switch result.Decision {
	case access.DecisionAllow:
		return nil
	case access.DecisionRedirect:
		return apperrors.PermissionDeniedf("active role selection required")
	}

	switch result.Reason {
	case access.ReasonUnauthenticated:
		return apperrors.ErrUnauthenticated
	case access.ReasonWrongActiveRole:
		return apperrors.PermissionDeniedf("operation not available for the selected role")
	default:
		return apperrors.PermissionDeniedf("insufficient permissions")
	}
}
