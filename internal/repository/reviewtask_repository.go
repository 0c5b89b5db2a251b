package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// ReviewTaskRepository handles review task database operations. Structural
// changes (create, reassign, remove) attach their assignment-history entry
// in the same transaction: the mutation cannot succeed without its ledger
// row.
type ReviewTaskRepository struct {
	db *sql.DB
}

// NewReviewTaskRepository creates a new review task repository
func NewReviewTaskRepository(db *sql.DB) *ReviewTaskRepository {
	return &ReviewTaskRepository{db: db}
}

const selectTaskSQL = `
	SELECT id, product_id, assigned_to, status, priority, deadline, review_round_id, assigned_at, started_at, completed_at, notes
	FROM review_tasks
`

// Create inserts an assigned pending task plus its "assign" ledger entry.
// The partial unique index on active assignments is the atomic gate: of two
// concurrent creates for the same product exactly one commits, the other
// gets Conflict.
func (r *ReviewTaskRepository) Create(task *models.ReviewTask, actorID uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	task.Status = models.TaskPending
	task.AssignedAt = time.Now()
	err = tx.QueryRow(
		`INSERT INTO review_tasks (product_id, assigned_to, status, priority, deadline, review_round_id, assigned_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		task.ProductID, task.AssignedTo, task.Status, task.Priority,
		task.Deadline, task.ReviewRoundID, task.AssignedAt, task.Notes,
	).Scan(&task.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("product %d already has an active review assignment", task.ProductID)
		}
		return fmt.Errorf("failed to create review task: %w", err)
	}

	entry := &models.AssignmentHistoryEntry{
		ReviewRoundID: task.ReviewRoundID,
		ProductID:     task.ProductID,
		ChangeType:    models.ChangeAssign,
		ChangedBy:     actorID,
	}
	if err := insertHistory(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by ID
func (r *ReviewTaskRepository) GetByID(id uint) (*models.ReviewTask, error) {
	row := r.db.QueryRow(selectTaskSQL+` WHERE id = $1`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("review task %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review task: %w", err)
	}
	return task, nil
}

// AdvanceStatus moves a task from the expected current status to the next
// one, stamping started_at or completed_at as appropriate. The WHERE clause
// on the current status is the concurrency gate; zero rows means the task
// moved underneath the caller.
func (r *ReviewTaskRepository) AdvanceStatus(id uint, from, to models.TaskStatus) (*models.ReviewTask, error) {
	now := time.Now()
	var stamp string
	switch to {
	case models.TaskInProgress:
		stamp = `, started_at = $4`
	case models.TaskCompleted:
		stamp = `, completed_at = $4`
	}

	query := `UPDATE review_tasks SET status = $3` + stamp + `
		 WHERE id = $1 AND status = $2
		 RETURNING id, product_id, assigned_to, status, priority, deadline, review_round_id, assigned_at, started_at, completed_at, notes`

	args := []any{id, from, to}
	if stamp != "" {
		args = append(args, now)
	}

	task, err := scanTask(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.InvalidStatef("review task %d is no longer %s", id, from)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to advance review task: %w", err)
	}
	return task, nil
}

// Reassign updates the assignee and appends the "reassign" ledger entry
// carrying the prior assignee, all in one transaction.
func (r *ReviewTaskRepository) Reassign(id, newReviewerID, actorID uint, reason string) (*models.ReviewTask, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	task, err := lockTask(tx, id)
	if err != nil {
		return nil, err
	}

	previous := task.AssignedTo
	if _, err := tx.Exec(
		`UPDATE review_tasks SET assigned_to = $2 WHERE id = $1`,
		id, newReviewerID,
	); err != nil {
		return nil, fmt.Errorf("failed to reassign review task: %w", err)
	}

	entry := &models.AssignmentHistoryEntry{
		ReviewRoundID:    task.ReviewRoundID,
		ProductID:        task.ProductID,
		PreviousAssignee: previous,
		ChangeType:       models.ChangeReassign,
		ChangedBy:        actorID,
		Reason:           reason,
	}
	if err := insertHistory(tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reassignment: %w", err)
	}

	task.AssignedTo = &newReviewerID
	return task, nil
}

// Remove deletes the task and appends the "remove" ledger entry carrying
// the assignee at time of deletion, all in one transaction.
func (r *ReviewTaskRepository) Remove(id, actorID uint, reason string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	task, err := lockTask(tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM review_tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete review task: %w", err)
	}

	entry := &models.AssignmentHistoryEntry{
		ReviewRoundID:    task.ReviewRoundID,
		ProductID:        task.ProductID,
		PreviousAssignee: task.AssignedTo,
		ChangeType:       models.ChangeRemove,
		ChangedBy:        actorID,
		Reason:           reason,
	}
	if err := insertHistory(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}
	return nil
}

// CountActiveByReviewer is the reviewer's workload: assigned tasks still
// pending or in progress. It is recomputed on every read, never stored.
func (r *ReviewTaskRepository) CountActiveByReviewer(reviewerID uint) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM review_tasks
		 WHERE assigned_to = $1 AND status IN ('pending', 'in_progress')`,
		reviewerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tasks: %w", err)
	}
	return count, nil
}

// ListByReviewer retrieves all tasks assigned to a reviewer
func (r *ReviewTaskRepository) ListByReviewer(reviewerID uint) ([]models.ReviewTask, error) {
	return r.list(`WHERE assigned_to = $1 ORDER BY assigned_at`, reviewerID)
}

// ListByRound retrieves all tasks in a round
func (r *ReviewTaskRepository) ListByRound(roundID uint) ([]models.ReviewTask, error) {
	return r.list(`WHERE review_round_id = $1 ORDER BY assigned_at`, roundID)
}

func (r *ReviewTaskRepository) list(where string, arg any) ([]models.ReviewTask, error) {
	rows, err := r.db.Query(selectTaskSQL+where, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list review tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.ReviewTask
	for rows.Next() {
		var task models.ReviewTask
		if err := rows.Scan(
			&task.ID,
			&task.ProductID,
			&task.AssignedTo,
			&task.Status,
			&task.Priority,
			&task.Deadline,
			&task.ReviewRoundID,
			&task.AssignedAt,
			&task.StartedAt,
			&task.CompletedAt,
			&task.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// lockTask reads a task FOR UPDATE inside the given transaction
func lockTask(tx *sql.Tx, id uint) (*models.ReviewTask, error) {
	row := tx.QueryRow(selectTaskSQL+` WHERE id = $1 FOR UPDATE`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("review task %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock review task: %w", err)
	}
	return task, nil
}

func scanTask(row *sql.Row) (*models.ReviewTask, error) {
	task := &models.ReviewTask{}
	err := row.Scan(
		&task.ID,
		&task.ProductID,
		&task.AssignedTo,
		&task.Status,
		&task.Priority,
		&task.Deadline,
		&task.ReviewRoundID,
		&task.AssignedAt,
		&task.StartedAt,
		&task.CompletedAt,
		&task.Notes,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
