package service

import (
	"log/slog"
	"sort"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// AssignmentService is the review assignment engine: it hands product
// review tasks to reviewer accounts, advances each task through its
// lifecycle, and records every structural change in the assignment ledger.
type AssignmentService struct {
	tasks    TaskStore
	rounds   RoundStore
	history  HistoryStore
	resolver *RoleResolver
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(tasks TaskStore, rounds RoundStore, history HistoryStore, resolver *RoleResolver) *AssignmentService {
	return &AssignmentService{
		tasks:    tasks,
		rounds:   rounds,
		history:  history,
		resolver: resolver,
	}
}

// QuickAssignResult is the per-product outcome of a batch assignment
type QuickAssignResult struct {
	ProductID uint               `json:"product_id"`
	Task      *models.ReviewTask `json:"task,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Assign creates a pending task for the product. Fails with Conflict if the
// product already has an active assignment; the store enforces that
// atomically, so of two concurrent calls exactly one succeeds.
func (s *AssignmentService) Assign(productID, reviewerID uint, priority models.Priority, deadline *time.Time, roundID *uint, actorID uint) (*models.ReviewTask, error) {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.checkReviewer(reviewerID); err != nil {
		return nil, err
	}
	return s.assign(productID, reviewerID, priority, deadline, roundID, actorID)
}

func (s *AssignmentService) assign(productID, reviewerID uint, priority models.Priority, deadline *time.Time, roundID *uint, actorID uint) (*models.ReviewTask, error) {
	if !validPriority(priority) {
		return nil, apperrors.Validationf("invalid priority %q", priority)
	}

	if roundID != nil {
		round, err := s.rounds.GetByID(*roundID)
		if err != nil {
			return nil, err
		}
		if round.Status != models.RoundOpen {
			return nil, apperrors.InvalidStatef("review round %d is closed", *roundID)
		}
		if deadline == nil {
			deadline = round.DefaultDeadline
		}
	}

	task := &models.ReviewTask{
		ProductID:     productID,
		AssignedTo:    &reviewerID,
		Priority:      priority,
		Deadline:      deadline,
		ReviewRoundID: roundID,
	}
	if err := s.tasks.Create(task, actorID); err != nil {
		return nil, err
	}

	slog.Info("Review task assigned",
		"task_id", task.ID,
		"product_id", productID,
		"reviewer_id", reviewerID,
		"priority", priority,
	)
	return task, nil
}

// QuickAssign is the batch form of Assign. Each product is evaluated
// independently; one Conflict does not stop the rest.
func (s *AssignmentService) QuickAssign(productIDs []uint, reviewerID uint, deadline *time.Time, roundID *uint, actorID uint) ([]QuickAssignResult, error) {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, apperrors.Validationf("no products given")
	}
	if err := s.checkReviewer(reviewerID); err != nil {
		return nil, err
	}

	results := make([]QuickAssignResult, 0, len(productIDs))
	for _, productID := range productIDs {
		result := QuickAssignResult{ProductID: productID}
		task, err := s.assign(productID, reviewerID, models.PriorityMedium, deadline, roundID, actorID)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Task = task
		}
		results = append(results, result)
	}
	return results, nil
}

// AdvanceStatus moves a task one step forward: pending -> in_progress ->
// completed -> company_reviewed. Anything else, backward steps included,
// fails with InvalidTransition. Only the assignee or an admin may advance.
func (s *AssignmentService) AdvanceStatus(taskID uint, newStatus models.TaskStatus, actorID uint) (*models.ReviewTask, error) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	if task.AssignedTo == nil || *task.AssignedTo != actorID {
		if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
			return nil, err
		}
	}

	if !task.Status.CanAdvance(newStatus) {
		return nil, apperrors.InvalidTransitionf("cannot move review task from %s to %s", task.Status, newStatus)
	}

	updated, err := s.tasks.AdvanceStatus(taskID, task.Status, newStatus)
	if err != nil {
		return nil, err
	}

	slog.Info("Review task advanced",
		"task_id", taskID,
		"from", task.Status,
		"to", newStatus,
	)
	return updated, nil
}

// Reassign hands the task to another reviewer. Status is untouched; only
// the assignee changes, and the ledger records the prior one.
func (s *AssignmentService) Reassign(taskID, newReviewerID, actorID uint, reason string) (*models.ReviewTask, error) {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.checkReviewer(newReviewerID); err != nil {
		return nil, err
	}

	task, err := s.tasks.Reassign(taskID, newReviewerID, actorID, reason)
	if err != nil {
		return nil, err
	}

	slog.Info("Review task reassigned",
		"task_id", taskID,
		"reviewer_id", newReviewerID,
		"by", actorID,
	)
	return task, nil
}

// Remove deletes the task from any state. Always logged to the ledger with
// the assignee at time of deletion; the store couples both in one
// transaction.
func (s *AssignmentService) Remove(taskID, actorID uint, reason string) error {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.tasks.Remove(taskID, actorID, reason); err != nil {
		return err
	}

	slog.Info("Review task removed",
		"task_id", taskID,
		"by", actorID,
		"reason", reason,
	)
	return nil
}

// Workload counts the reviewer's tasks still pending or in progress.
// Derived on every call, never stored.
func (s *AssignmentService) Workload(reviewerID uint) (int, error) {
	return s.tasks.CountActiveByReviewer(reviewerID)
}

// ReviewerSuggestion pairs a reviewer with its current workload
type ReviewerSuggestion struct {
	AccountID uint `json:"account_id"`
	Workload  int  `json:"workload"`
}

// SuggestReviewers returns the reviewer roster ordered by ascending
// workload. A suggestion for balancing, not an enforced cap.
func (s *AssignmentService) SuggestReviewers() ([]ReviewerSuggestion, error) {
	roster, err := s.resolver.ReviewerAccounts()
	if err != nil {
		return nil, err
	}

	suggestions := make([]ReviewerSuggestion, 0, len(roster))
	for _, reviewerID := range roster {
		workload, err := s.tasks.CountActiveByReviewer(reviewerID)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, ReviewerSuggestion{AccountID: reviewerID, Workload: workload})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Workload < suggestions[j].Workload
	})
	return suggestions, nil
}

// GetTask retrieves a task
func (s *AssignmentService) GetTask(taskID uint) (*models.ReviewTask, error) {
	return s.tasks.GetByID(taskID)
}

// TasksByReviewer lists a reviewer's tasks
func (s *AssignmentService) TasksByReviewer(reviewerID uint) ([]models.ReviewTask, error) {
	return s.tasks.ListByReviewer(reviewerID)
}

// TasksByRound lists a round's tasks
func (s *AssignmentService) TasksByRound(roundID uint) ([]models.ReviewTask, error) {
	return s.tasks.ListByRound(roundID)
}

// CreateRound opens a new review round
func (s *AssignmentService) CreateRound(roundNumber int, name string, defaultDeadline *time.Time, actorID uint) (*models.ReviewRound, error) {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	round := &models.ReviewRound{
		RoundNumber:     roundNumber,
		Name:            name,
		DefaultDeadline: defaultDeadline,
	}
	if err := s.rounds.Create(round); err != nil {
		return nil, err
	}
	return round, nil
}

// CloseRound marks a round closed. Existing tasks are unaffected; rounds
// are organizational only.
func (s *AssignmentService) CloseRound(roundID, actorID uint) error {
	if err := requireRole(s.resolver, actorID, models.RoleAdmin); err != nil {
		return err
	}
	return s.rounds.Close(roundID)
}

// HistoryByRound lists the ledger entries for a round, oldest first
func (s *AssignmentService) HistoryByRound(roundID uint) ([]models.AssignmentHistoryEntry, error) {
	return s.history.ListByRound(roundID)
}

// HistoryByProduct lists the ledger entries for a product, oldest first
func (s *AssignmentService) HistoryByProduct(productID uint) ([]models.AssignmentHistoryEntry, error) {
	return s.history.ListByProduct(productID)
}

// checkReviewer verifies the target account is on the reviewer roster
func (s *AssignmentService) checkReviewer(reviewerID uint) error {
	isReviewer, err := s.resolver.HasRole(reviewerID, models.RoleReviewer)
	if err != nil {
		return err
	}
	if !isReviewer {
		return apperrors.Validationf("account %d is not a reviewer", reviewerID)
	}
	return nil
}

func validPriority(priority models.Priority) bool {
	_, err := models.ParsePriority(string(priority))
	return err == nil
}
