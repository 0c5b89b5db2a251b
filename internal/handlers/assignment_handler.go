package handlers

import (
	"net/http"
	"time"

	"catalog-core/internal/middleware"
	"catalog-core/internal/models"
	"catalog-core/internal/service"
)

// AssignmentHandler serves the review assignment engine
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// taskView decorates a task with its derived urgency band
type taskView struct {
	*models.ReviewTask
	Urgency models.Urgency `json:"urgency"`
}

func viewTask(task *models.ReviewTask) taskView {
	return taskView{ReviewTask: task, Urgency: task.Urgency(time.Now())}
}

func viewTasks(tasks []models.ReviewTask) []taskView {
	views := make([]taskView, 0, len(tasks))
	now := time.Now()
	for i := range tasks {
		views = append(views, taskView{ReviewTask: &tasks[i], Urgency: tasks[i].Urgency(now)})
	}
	return views
}

type assignRequest struct {
	ProductID  uint       `json:"product_id"`
	ReviewerID uint       `json:"reviewer_id"`
	Priority   string     `json:"priority"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	RoundID    *uint      `json:"round_id,omitempty"`
}

// Assign creates a review task for a product
// POST /api/v1/review-tasks
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	task, err := h.assignmentService.Assign(
		req.ProductID, req.ReviewerID, models.Priority(req.Priority),
		req.Deadline, req.RoundID, actor.AccountID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, viewTask(task))
}

type quickAssignRequest struct {
	ProductIDs []uint     `json:"product_ids"`
	ReviewerID uint       `json:"reviewer_id"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	RoundID    *uint      `json:"round_id,omitempty"`
}

// QuickAssign assigns several products to one reviewer, with per-product
// results
// POST /api/v1/review-tasks/quick-assign
func (h *AssignmentHandler) QuickAssign(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req quickAssignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	results, err := h.assignmentService.QuickAssign(
		req.ProductIDs, req.ReviewerID, req.Deadline, req.RoundID, actor.AccountID,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

type advanceRequest struct {
	Status string `json:"status"`
}

// AdvanceStatus moves a task one lifecycle step forward
// POST /api/v1/review-tasks/{id}/status
func (h *AssignmentHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req advanceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	status, err := models.ParseTaskStatus(req.Status)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	task, err := h.assignmentService.AdvanceStatus(id, status, actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewTask(task))
}

type reassignRequest struct {
	ReviewerID uint   `json:"reviewer_id"`
	Reason     string `json:"reason"`
}

// Reassign hands a task to another reviewer
// POST /api/v1/review-tasks/{id}/reassign
func (h *AssignmentHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req reassignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	task, err := h.assignmentService.Reassign(id, req.ReviewerID, actor.AccountID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewTask(task))
}

// Remove deletes a task, logging the removal
// DELETE /api/v1/review-tasks/{id}?reason=...
func (h *AssignmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.assignmentService.Remove(id, actor.AccountID, r.URL.Query().Get("reason")); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Review task removed"})
}

// Workload returns a reviewer's active task count
// GET /api/v1/reviewers/{id}/workload
func (h *AssignmentHandler) Workload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	workload, err := h.assignmentService.Workload(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"workload": workload})
}

// Suggestions returns reviewers ordered by ascending workload
// GET /api/v1/reviewers/suggestions
func (h *AssignmentHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.assignmentService.SuggestReviewers()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestions)
}

// TasksByReviewer lists a reviewer's tasks
// GET /api/v1/reviewers/{id}/tasks
func (h *AssignmentHandler) TasksByReviewer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	tasks, err := h.assignmentService.TasksByReviewer(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewTasks(tasks))
}

type createRoundRequest struct {
	RoundNumber     int        `json:"round_number"`
	Name            string     `json:"name"`
	DefaultDeadline *time.Time `json:"default_deadline,omitempty"`
}

// CreateRound opens a review round
// POST /api/v1/review-rounds
func (h *AssignmentHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var req createRoundRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	round, err := h.assignmentService.CreateRound(req.RoundNumber, req.Name, req.DefaultDeadline, actor.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, round)
}

// CloseRound marks a round closed
// POST /api/v1/review-rounds/{id}/close
func (h *AssignmentHandler) CloseRound(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.assignmentService.CloseRound(id, actor.AccountID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Review round closed"})
}

// RoundTasks lists a round's tasks
// GET /api/v1/review-rounds/{id}/tasks
func (h *AssignmentHandler) RoundTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	tasks, err := h.assignmentService.TasksByRound(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, viewTasks(tasks))
}

// HistoryByRound lists the assignment ledger for a round
// GET /api/v1/history/rounds/{id}
func (h *AssignmentHandler) HistoryByRound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.assignmentService.HistoryByRound(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AssignmentHistoryEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// HistoryByProduct lists the assignment ledger for a product
// GET /api/v1/history/products/{id}
func (h *AssignmentHandler) HistoryByProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.assignmentService.HistoryByProduct(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AssignmentHistoryEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}
