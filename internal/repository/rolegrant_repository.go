package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// RoleGrantRepository handles role grant database operations. Grants are
// only ever inserted and deleted, never updated.
type RoleGrantRepository struct {
	db *sql.DB
}

// NewRoleGrantRepository creates a new role grant repository
func NewRoleGrantRepository(db *sql.DB) *RoleGrantRepository {
	return &RoleGrantRepository{db: db}
}

// Insert creates a grant. The (account_id, role) primary key is the
// uniqueness gate; a duplicate surfaces as Conflict.
func (r *RoleGrantRepository) Insert(grant *models.RoleGrant) error {
	grant.GrantedAt = time.Now()
	_, err := r.db.Exec(
		insertGrantSQL,
		grant.AccountID, grant.Role, grant.GrantedBy, grant.GrantedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("account %d already holds role %s", grant.AccountID, grant.Role)
		}
		return fmt.Errorf("failed to insert role grant: %w", err)
	}
	return nil
}

const insertGrantSQL = `
	INSERT INTO role_grants (account_id, role, granted_by, granted_at)
	VALUES ($1, $2, $3, $4)
`

// Delete revokes a grant
func (r *RoleGrantRepository) Delete(accountID uint, role models.Role) error {
	result, err := r.db.Exec(
		`DELETE FROM role_grants WHERE account_id = $1 AND role = $2`,
		accountID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to delete role grant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete role grant: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("account %d does not hold role %s", accountID, role)
	}
	return nil
}

// ListByAccount retrieves all grants for an account
func (r *RoleGrantRepository) ListByAccount(accountID uint) ([]models.RoleGrant, error) {
	query := `
		SELECT account_id, role, granted_by, granted_at
		FROM role_grants
		WHERE account_id = $1
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ListAll retrieves every grant in the system
func (r *RoleGrantRepository) ListAll() ([]models.RoleGrant, error) {
	query := `
		SELECT account_id, role, granted_by, granted_at
		FROM role_grants
		ORDER BY account_id, role
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// HasRole is the fast coarse capability check used ahead of full resolution
func (r *RoleGrantRepository) HasRole(accountID uint, role models.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM role_grants WHERE account_id = $1 AND role = $2)`,
		accountID, role,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// AccountsByRole retrieves the ids of all accounts holding a role
func (r *RoleGrantRepository) AccountsByRole(role models.Role) ([]uint, error) {
	rows, err := r.db.Query(
		`SELECT account_id FROM role_grants WHERE role = $1 ORDER BY account_id`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by role: %w", err)
	}
	defer rows.Close()

	var accountIDs []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		accountIDs = append(accountIDs, id)
	}

	return accountIDs, nil
}

func scanGrants(rows *sql.Rows) ([]models.RoleGrant, error) {
	var grants []models.RoleGrant
	for rows.Next() {
		var grant models.RoleGrant
		if err := rows.Scan(&grant.AccountID, &grant.Role, &grant.GrantedBy, &grant.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		grants = append(grants, grant)
	}
	return grants, nil
}
