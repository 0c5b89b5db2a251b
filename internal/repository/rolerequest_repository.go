package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// RoleRequestRepository handles role request database operations
type RoleRequestRepository struct {
	db *sql.DB
}

// NewRoleRequestRepository creates a new role request repository
func NewRoleRequestRepository(db *sql.DB) *RoleRequestRepository {
	return &RoleRequestRepository{db: db}
}

// Create inserts a pending request. The partial unique index on
// (account_id, requested_role) WHERE pending enforces the one-pending rule.
func (r *RoleRequestRepository) Create(request *models.RoleRequest) error {
	query := `
		INSERT INTO role_requests (account_id, requested_role, justification, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	request.Status = models.RequestPending
	request.CreatedAt = time.Now()
	err := r.db.QueryRow(
		query,
		request.AccountID, request.RequestedRole, request.Justification,
		request.Status, request.CreatedAt,
	).Scan(&request.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("a pending request for role %s already exists", request.RequestedRole)
		}
		return fmt.Errorf("failed to create role request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *RoleRequestRepository) GetByID(id uint) (*models.RoleRequest, error) {
	query := selectRequestSQL + ` WHERE id = $1`

	request := &models.RoleRequest{}
	err := r.db.QueryRow(query, id).Scan(
		&request.ID,
		&request.AccountID,
		&request.RequestedRole,
		&request.Justification,
		&request.Status,
		&request.CreatedAt,
		&request.ReviewedBy,
		&request.ReviewedAt,
		&request.ReviewNote,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("role request %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role request: %w", err)
	}

	return request, nil
}

const selectRequestSQL = `
	SELECT id, account_id, requested_role, justification, status, created_at, reviewed_by, reviewed_at, review_note
	FROM role_requests
`

// ListPending retrieves all pending requests, oldest first
func (r *RoleRequestRepository) ListPending() ([]models.RoleRequest, error) {
	query := selectRequestSQL + ` WHERE status = 'pending' ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []models.RoleRequest
	for rows.Next() {
		var request models.RoleRequest
		if err := rows.Scan(
			&request.ID,
			&request.AccountID,
			&request.RequestedRole,
			&request.Justification,
			&request.Status,
			&request.CreatedAt,
			&request.ReviewedBy,
			&request.ReviewedAt,
			&request.ReviewNote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, nil
}

// Approve marks the request approved and inserts the grant in one
// transaction. The conditional pending -> approved update is the atomic
// gate: of two concurrent approvers, the second sees zero rows and gets
// InvalidState, and no duplicate grant is inserted. A request can never end
// up approved without its grant, or vice versa.
func (r *RoleRequestRepository) Approve(id, approverID uint) (*models.RoleRequest, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	request := &models.RoleRequest{}
	err = tx.QueryRow(
		`UPDATE role_requests
		 SET status = 'approved', reviewed_by = $2, reviewed_at = $3
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, account_id, requested_role, justification, status, created_at, reviewed_by, reviewed_at, review_note`,
		id, approverID, now,
	).Scan(
		&request.ID,
		&request.AccountID,
		&request.RequestedRole,
		&request.Justification,
		&request.Status,
		&request.CreatedAt,
		&request.ReviewedBy,
		&request.ReviewedAt,
		&request.ReviewNote,
	)
	if err == sql.ErrNoRows {
		return nil, r.notPendingErr(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve role request: %w", err)
	}

	_, err = tx.Exec(insertGrantSQL, request.AccountID, request.RequestedRole, approverID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflictf("account %d already holds role %s", request.AccountID, request.RequestedRole)
		}
		return nil, fmt.Errorf("failed to insert role grant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	return request, nil
}

// Reject marks the request rejected with the same conditional gate as Approve
func (r *RoleRequestRepository) Reject(id, reviewerID uint, reason string) (*models.RoleRequest, error) {
	now := time.Now()
	request := &models.RoleRequest{}
	err := r.db.QueryRow(
		`UPDATE role_requests
		 SET status = 'rejected', reviewed_by = $2, reviewed_at = $3, review_note = $4
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, account_id, requested_role, justification, status, created_at, reviewed_by, reviewed_at, review_note`,
		id, reviewerID, now, reason,
	).Scan(
		&request.ID,
		&request.AccountID,
		&request.RequestedRole,
		&request.Justification,
		&request.Status,
		&request.CreatedAt,
		&request.ReviewedBy,
		&request.ReviewedAt,
		&request.ReviewNote,
	)
	if err == sql.ErrNoRows {
		return nil, r.notPendingErr(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject role request: %w", err)
	}

	return request, nil
}

// notPendingErr distinguishes a missing request from one already decided
func (r *RoleRequestRepository) notPendingErr(id uint) error {
	existing, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return apperrors.InvalidStatef("role request %d is already %s", id, existing.Status)
}
