package service

import (
	"catalog-core/internal/models"
)

// Store interfaces the services depend on. The repository package provides
// the implementations; tests substitute in-memory fakes.

// GrantStore is the account/role store boundary
type GrantStore interface {
	Insert(grant *models.RoleGrant) error
	Delete(accountID uint, role models.Role) error
	ListByAccount(accountID uint) ([]models.RoleGrant, error)
	ListAll() ([]models.RoleGrant, error)
	HasRole(accountID uint, role models.Role) (bool, error)
	AccountsByRole(role models.Role) ([]uint, error)
}

// AccountStore reads accounts
type AccountStore interface {
	GetByID(id uint) (*models.Account, error)
}

// SessionStore holds the per-session active-role selection
type SessionStore interface {
	SetActiveRole(sessionID string, role models.Role) error
	ClearActiveRole(accountID uint, role models.Role) error
}

// RequestStore persists role requests. Approve performs the atomic
// pending -> approved transition together with the grant insert.
type RequestStore interface {
	Create(request *models.RoleRequest) error
	GetByID(id uint) (*models.RoleRequest, error)
	ListPending() ([]models.RoleRequest, error)
	Approve(id, approverID uint) (*models.RoleRequest, error)
	Reject(id, reviewerID uint, reason string) (*models.RoleRequest, error)
}

// AdoptionStore reads the catalog's product-adoption facts
type AdoptionStore interface {
	HasAdoptions(accountID uint) (bool, error)
}

// TaskStore persists review tasks. Create enforces active-assignment
// uniqueness atomically; Create, Reassign and Remove attach their history
// entry in the same transaction as the mutation.
type TaskStore interface {
	Create(task *models.ReviewTask, actorID uint) error
	GetByID(id uint) (*models.ReviewTask, error)
	AdvanceStatus(id uint, from, to models.TaskStatus) (*models.ReviewTask, error)
	Reassign(id, newReviewerID, actorID uint, reason string) (*models.ReviewTask, error)
	Remove(id, actorID uint, reason string) error
	CountActiveByReviewer(reviewerID uint) (int, error)
	ListByReviewer(reviewerID uint) ([]models.ReviewTask, error)
	ListByRound(roundID uint) ([]models.ReviewTask, error)
}

// RoundStore persists review rounds
type RoundStore interface {
	Create(round *models.ReviewRound) error
	GetByID(id uint) (*models.ReviewRound, error)
	Close(id uint) error
}

// HistoryStore reads the append-only assignment ledger
type HistoryStore interface {
	ListByRound(roundID uint) ([]models.AssignmentHistoryEntry, error)
	ListByProduct(productID uint) ([]models.AssignmentHistoryEntry, error)
}
