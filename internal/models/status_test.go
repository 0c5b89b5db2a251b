package models

import (
	"testing"
	"time"
)

func TestTaskStatusCanAdvance(t *testing.T) {
	allowed := map[TaskStatus]TaskStatus{
		TaskPending:    TaskInProgress,
		TaskInProgress: TaskCompleted,
		TaskCompleted:  TaskCompanyReviewed,
	}

	statuses := []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskCompanyReviewed}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[from] == to
			if got := from.CanAdvance(to); got != want {
				t.Errorf("CanAdvance(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	// No skipping and no moving backwards.
	if TaskPending.CanAdvance(TaskCompleted) {
		t.Error("Should not skip in_progress")
	}
	if TaskCompleted.CanAdvance(TaskInProgress) {
		t.Error("Should not move backwards")
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if TaskPending.Terminal() || TaskInProgress.Terminal() || TaskCompleted.Terminal() {
		t.Error("Only company_reviewed should be terminal")
	}
	if !TaskCompanyReviewed.Terminal() {
		t.Error("company_reviewed should be terminal")
	}
}

func TestParseTaskStatus(t *testing.T) {
	if _, err := ParseTaskStatus("in_progress"); err != nil {
		t.Errorf("ParseTaskStatus(in_progress) returned error: %v", err)
	}
	if _, err := ParseTaskStatus("deleted"); err == nil {
		t.Error("ParseTaskStatus(deleted) should fail")
	}
}

func TestParsePriority(t *testing.T) {
	for _, s := range []string{"low", "medium", "high", "critical"} {
		if _, err := ParsePriority(s); err != nil {
			t.Errorf("ParsePriority(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) should fail")
	}
}

func TestTaskUrgency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	deadline := func(d time.Duration) *time.Time {
		dl := now.Add(d)
		return &dl
	}

	tests := []struct {
		name     string
		deadline *time.Time
		want     Urgency
	}{
		{"no deadline", nil, UrgencyRecent},
		{"one day overdue", deadline(-1 * day), UrgencyOverdue},
		{"just past", deadline(-time.Minute), UrgencyOverdue},
		{"two days out", deadline(2 * day), UrgencyHigh},
		{"three days out", deadline(3 * day), UrgencyHigh},
		{"five days out", deadline(5 * day), UrgencyMedium},
		{"seven days out", deadline(7 * day), UrgencyMedium},
		{"ten days out", deadline(10 * day), UrgencyLow},
	}

	for _, tt := range tests {
		if got := TaskUrgency(tt.deadline, now); got != tt.want {
			t.Errorf("%s: TaskUrgency() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestReviewTaskActive(t *testing.T) {
	reviewer := uint(7)

	task := &ReviewTask{AssignedTo: &reviewer, Status: TaskPending}
	if !task.Active() {
		t.Error("Assigned pending task should be active")
	}

	task.Status = TaskInProgress
	if !task.Active() {
		t.Error("Assigned in-progress task should be active")
	}

	task.Status = TaskCompleted
	if task.Active() {
		t.Error("Completed task should not be active")
	}

	task = &ReviewTask{AssignedTo: nil, Status: TaskPending}
	if task.Active() {
		t.Error("Unassigned task should not be active")
	}
}
