package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// SessionRepository handles session database operations
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (id, account_id, jti, active_role, expires_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	session.CreatedAt = time.Now()
	_, err := r.db.Exec(
		query,
		session.ID,
		session.AccountID,
		session.JTI,
		session.ActiveRole,
		session.ExpiresAt,
		session.CreatedAt,
		session.IPAddress,
		session.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByJTI retrieves a live session by JTI
func (r *SessionRepository) GetByJTI(jti string) (*models.Session, error) {
	query := `
		SELECT id, account_id, jti, active_role, expires_at, created_at, ip_address, user_agent
		FROM sessions
		WHERE jti = $1 AND expires_at > $2
	`

	session := &models.Session{}
	err := r.db.QueryRow(query, jti, time.Now()).Scan(
		&session.ID,
		&session.AccountID,
		&session.JTI,
		&session.ActiveRole,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.IPAddress,
		&session.UserAgent,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("session not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// SetActiveRole stores the session's active-role selection
func (r *SessionRepository) SetActiveRole(sessionID string, role models.Role) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET active_role = $2 WHERE id = $1`,
		sessionID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to set active role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set active role: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("session not found")
	}
	return nil
}

// ClearActiveRole drops a session's active-role selection. Used after a
// revocation so a stale selection cannot outlive its grant.
func (r *SessionRepository) ClearActiveRole(accountID uint, role models.Role) error {
	_, err := r.db.Exec(
		`UPDATE sessions SET active_role = NULL WHERE account_id = $1 AND active_role = $2`,
		accountID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to clear active role: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
