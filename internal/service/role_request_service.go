package service

import (
	"log/slog"
	"strings"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// RoleRequestService runs the role request workflow: submission by the
// requesting account, approval or rejection by an admin, and direct
// grant/revoke admin actions. Conflict rules are re-validated against
// current state at approval time, not submission time.
type RoleRequestService struct {
	requests  RequestStore
	grants    GrantStore
	accounts  AccountStore
	adoptions AdoptionStore
	sessions  SessionStore
	resolver  *RoleResolver
}

// NewRoleRequestService creates a new role request service
func NewRoleRequestService(
	requests RequestStore,
	grants GrantStore,
	accounts AccountStore,
	adoptions AdoptionStore,
	sessions SessionStore,
	resolver *RoleResolver,
) *RoleRequestService {
	return &RoleRequestService{
		requests:  requests,
		grants:    grants,
		accounts:  accounts,
		adoptions: adoptions,
		sessions:  sessions,
		resolver:  resolver,
	}
}

// Submit creates a pending request for an elevated role. Nothing is
// granted yet; conflicts are only advisory at this point and are enforced
// at approval.
func (s *RoleRequestService) Submit(accountID uint, role models.Role, justification string) (*models.RoleRequest, error) {
	if !role.Valid() {
		return nil, apperrors.Validationf("invalid role %q", role)
	}
	if strings.TrimSpace(justification) == "" {
		return nil, apperrors.Validationf("justification is required")
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.Validationf("account is deactivated")
	}
	if !account.EmailVerified {
		return nil, apperrors.Validationf("email must be verified before requesting a role")
	}

	held, err := s.grants.HasRole(accountID, role)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, apperrors.Conflictf("account already holds role %s", role)
	}

	request := &models.RoleRequest{
		AccountID:     accountID,
		RequestedRole: role,
		Justification: justification,
	}
	if err := s.requests.Create(request); err != nil {
		return nil, err
	}

	slog.Info("Role request submitted",
		"request_id", request.ID,
		"account_id", accountID,
		"role", role,
	)
	return request, nil
}

// Approve grants the requested role. The approver must currently hold
// admin; the conflict rules are re-validated against the state at approval
// time, since facts may have changed since submission. The status
// transition and the grant insert are one transaction in the store.
func (s *RoleRequestService) Approve(requestID, approverID uint) (*models.RoleRequest, error) {
	if err := requireRole(s.resolver, approverID, models.RoleAdmin); err != nil {
		return nil, err
	}

	request, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.InvalidStatef("role request %d is already %s", requestID, request.Status)
	}

	if err := s.checkConflicts(request.AccountID, request.RequestedRole); err != nil {
		return nil, err
	}

	approved, err := s.requests.Approve(requestID, approverID)
	if err != nil {
		return nil, err
	}

	slog.Info("Role request approved",
		"request_id", requestID,
		"account_id", approved.AccountID,
		"role", approved.RequestedRole,
		"approved_by", approverID,
	)
	return approved, nil
}

// Reject marks the request rejected. No grant is created and the account
// may resubmit.
func (s *RoleRequestService) Reject(requestID, reviewerID uint, reason string) (*models.RoleRequest, error) {
	if err := requireRole(s.resolver, reviewerID, models.RoleAdmin); err != nil {
		return nil, err
	}

	rejected, err := s.requests.Reject(requestID, reviewerID, reason)
	if err != nil {
		return nil, err
	}

	slog.Info("Role request rejected",
		"request_id", requestID,
		"rejected_by", reviewerID,
	)
	return rejected, nil
}

// Get retrieves a request; admins see any request, accounts only their own
func (s *RoleRequestService) Get(requestID, actorID uint) (*models.RoleRequest, error) {
	request, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.AccountID == actorID {
		return request, nil
	}
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	return request, nil
}

// ListPending retrieves all pending requests for the admin review queue
func (s *RoleRequestService) ListPending(actorID uint) ([]models.RoleRequest, error) {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.requests.ListPending()
}

// Grant inserts a grant directly, bypassing the request workflow. The same
// conflict rules apply; there is no role that implies another.
func (s *RoleRequestService) Grant(accountID uint, role models.Role, grantedBy uint) (*models.RoleGrant, error) {
	if err := requireRole(s.resolver, grantedBy, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.Validationf("invalid role %q", role)
	}
	if _, err := s.accounts.GetByID(accountID); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(accountID, role); err != nil {
		return nil, err
	}

	grant := &models.RoleGrant{
		AccountID: accountID,
		Role:      role,
		GrantedBy: grantedBy,
	}
	if err := s.grants.Insert(grant); err != nil {
		return nil, err
	}

	slog.Info("Role granted directly",
		"account_id", accountID,
		"role", role,
		"granted_by", grantedBy,
	)
	return grant, nil
}

// Revoke deletes a grant and drops any session selection of the revoked
// role, so a stale active-role choice cannot outlive the grant.
func (s *RoleRequestService) Revoke(accountID uint, role models.Role, actorID uint) error {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.grants.Delete(accountID, role); err != nil {
		return err
	}
	if err := s.sessions.ClearActiveRole(accountID, role); err != nil {
		slog.Error("Failed to clear active role after revocation",
			"account_id", accountID,
			"role", role,
			"error", err,
		)
	}

	slog.Info("Role revoked",
		"account_id", accountID,
		"role", role,
		"revoked_by", actorID,
	)
	return nil
}

// checkConflicts enforces the business rules against current state:
// C1 reviewer and company are mutually exclusive; C2 an account with any
// product-adoption record must not hold company.
func (s *RoleRequestService) checkConflicts(accountID uint, role models.Role) error {
	roles, err := s.resolver.ResolveRoles(accountID)
	if err != nil {
		return err
	}
	if roles.Has(role) {
		return apperrors.Conflictf("account already holds role %s", role)
	}
	for _, held := range roles.Slice() {
		if role.ConflictsWith(held) {
			return apperrors.Conflictf("role %s cannot be combined with %s", role, held)
		}
	}

	if role == models.RoleCompany {
		adopter, err := s.adoptions.HasAdoptions(accountID)
		if err != nil {
			return err
		}
		if adopter {
			return apperrors.Conflictf("account has product adoption records and cannot hold the company role")
		}
	}

	return nil
}
