package service

import (
	"catalog-core/internal/access"
	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// RoleResolver computes the roles an account holds and manages the
// session-scoped active-role selection. It holds no per-account state of
// its own; every result is derived from the store on each call.
type RoleResolver struct {
	grants   GrantStore
	sessions SessionStore
}

// NewRoleResolver creates a new role resolver
func NewRoleResolver(grants GrantStore, sessions SessionStore) *RoleResolver {
	return &RoleResolver{
		grants:   grants,
		sessions: sessions,
	}
}

// ResolveRoles returns the deduplicated set of roles the account holds.
// Store-level duplication, should it ever occur, collapses in the set.
func (r *RoleResolver) ResolveRoles(accountID uint) (models.RoleSet, error) {
	grants, err := r.grants.ListByAccount(accountID)
	if err != nil {
		return nil, err
	}

	set := make(models.RoleSet, len(grants))
	for _, grant := range grants {
		set[grant.Role] = struct{}{}
	}
	return set, nil
}

// ActorFor builds the access-guard input for an account, with the given
// session-scoped active-role selection passed through explicitly.
func (r *RoleResolver) ActorFor(accountID uint, activeRole *models.Role) (access.Actor, error) {
	roles, err := r.ResolveRoles(accountID)
	if err != nil {
		return access.Actor{}, err
	}
	return access.Actor{
		AccountID:  accountID,
		Roles:      roles,
		ActiveRole: activeRole,
	}, nil
}

// RequiresSelection reports whether the account must pick an active role:
// it holds more than one role and has not selected one this session.
func (r *RoleResolver) RequiresSelection(roles models.RoleSet, activeRole *models.Role) bool {
	return len(roles) > 1 && activeRole == nil
}

// SelectActiveRole validates that the account holds the role and persists
// the selection on the session. The selection never outlives the session.
func (r *RoleResolver) SelectActiveRole(sessionID string, accountID uint, role models.Role) error {
	roles, err := r.ResolveRoles(accountID)
	if err != nil {
		return err
	}
	if !roles.Has(role) {
		return apperrors.Validationf("account does not hold role %s", role)
	}
	return r.sessions.SetActiveRole(sessionID, role)
}

// ReviewerAccounts returns the roster of accounts holding the reviewer role
func (r *RoleResolver) ReviewerAccounts() ([]uint, error) {
	return r.grants.AccountsByRole(models.RoleReviewer)
}

// HasRole is the fast coarse capability check
func (r *RoleResolver) HasRole(accountID uint, role models.Role) (bool, error) {
	return r.grants.HasRole(accountID, role)
}
