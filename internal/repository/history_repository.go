package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/models"
)

// HistoryRepository handles the append-only assignment history ledger.
// No update or delete is ever exposed.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts a ledger entry outside any surrounding transaction
func (r *HistoryRepository) Append(entry *models.AssignmentHistoryEntry) error {
	return insertHistory(r.db, entry)
}

// ListByRound retrieves entries for a round, oldest first
func (r *HistoryRepository) ListByRound(roundID uint) ([]models.AssignmentHistoryEntry, error) {
	return r.list(`WHERE review_round_id = $1`, roundID)
}

// ListByProduct retrieves entries for a product, oldest first
func (r *HistoryRepository) ListByProduct(productID uint) ([]models.AssignmentHistoryEntry, error) {
	return r.list(`WHERE product_id = $1`, productID)
}

func (r *HistoryRepository) list(where string, arg any) ([]models.AssignmentHistoryEntry, error) {
	query := `
		SELECT id, review_round_id, product_id, previous_assignee, change_type, changed_by, reason, created_at
		FROM assignment_history
	` + where + ` ORDER BY created_at, id`

	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	defer rows.Close()

	var entries []models.AssignmentHistoryEntry
	for rows.Next() {
		var entry models.AssignmentHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ReviewRoundID,
			&entry.ProductID,
			&entry.PreviousAssignee,
			&entry.ChangeType,
			&entry.ChangedBy,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// execer lets the same insert run on *sql.DB or inside a *sql.Tx, so task
// mutations can attach their ledger entry to their own transaction.
type execer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func insertHistory(e execer, entry *models.AssignmentHistoryEntry) error {
	entry.CreatedAt = time.Now()
	err := e.QueryRow(
		`INSERT INTO assignment_history (review_round_id, product_id, previous_assignee, change_type, changed_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.ReviewRoundID, entry.ProductID, entry.PreviousAssignee,
		entry.ChangeType, entry.ChangedBy, entry.Reason, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}
