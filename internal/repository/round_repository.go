package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// RoundRepository handles review round database operations
type RoundRepository struct {
	db *sql.DB
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// Create creates a new round
func (r *RoundRepository) Create(round *models.ReviewRound) error {
	query := `
		INSERT INTO review_rounds (round_number, name, default_deadline, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	round.Status = models.RoundOpen
	round.CreatedAt = time.Now()
	err := r.db.QueryRow(
		query,
		round.RoundNumber, round.Name, round.DefaultDeadline, round.Status, round.CreatedAt,
	).Scan(&round.ID)
	if err != nil {
		return fmt.Errorf("failed to create review round: %w", err)
	}
	return nil
}

// GetByID retrieves a round by ID
func (r *RoundRepository) GetByID(id uint) (*models.ReviewRound, error) {
	query := `
		SELECT id, round_number, name, default_deadline, status, created_at
		FROM review_rounds
		WHERE id = $1
	`

	round := &models.ReviewRound{}
	err := r.db.QueryRow(query, id).Scan(
		&round.ID,
		&round.RoundNumber,
		&round.Name,
		&round.DefaultDeadline,
		&round.Status,
		&round.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("review round %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review round: %w", err)
	}

	return round, nil
}

// Close marks an open round closed
func (r *RoundRepository) Close(id uint) error {
	result, err := r.db.Exec(
		`UPDATE review_rounds SET status = 'closed' WHERE id = $1 AND status = 'open'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to close review round: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close review round: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return apperrors.InvalidStatef("review round %d is already closed", id)
	}
	return nil
}
