package models

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a ReviewTask
type TaskStatus string

const (
	TaskPending         TaskStatus = "pending"
	TaskInProgress      TaskStatus = "in_progress"
	TaskCompleted       TaskStatus = "completed"
	TaskCompanyReviewed TaskStatus = "company_reviewed"
)

// taskTransitions is the forward-only transition table. Deletion is handled
// out of band and is not a status.
var taskTransitions = map[TaskStatus]TaskStatus{
	TaskPending:    TaskInProgress,
	TaskInProgress: TaskCompleted,
	TaskCompleted:  TaskCompanyReviewed,
}

// ParseTaskStatus validates a status string
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCompanyReviewed:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// CanAdvance reports whether the status may move to next. Only the single
// forward step is ever legal.
func (s TaskStatus) CanAdvance(next TaskStatus) bool {
	return taskTransitions[s] == next && next != ""
}

// Terminal reports whether no further transition is possible
func (s TaskStatus) Terminal() bool {
	_, ok := taskTransitions[s]
	return !ok
}

// Priority of a review task
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority validates a priority string
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Urgency is the derived deadline band of a task
type Urgency string

const (
	UrgencyRecent  Urgency = "recent"
	UrgencyOverdue Urgency = "overdue"
	UrgencyHigh    Urgency = "high"
	UrgencyMedium  Urgency = "medium"
	UrgencyLow     Urgency = "low"
)

// TaskUrgency is the canonical deadline banding. Every call site derives
// urgency through this function; it measures whole days from now to the
// deadline: no deadline -> recent, overdue, <=3 days -> high,
// <=7 days -> medium, otherwise low.
func TaskUrgency(deadline *time.Time, now time.Time) Urgency {
	if deadline == nil {
		return UrgencyRecent
	}
	days := int(deadline.Sub(now).Hours() / 24)
	if deadline.Before(now) {
		return UrgencyOverdue
	}
	switch {
	case days <= 3:
		return UrgencyHigh
	case days <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Urgency returns the task's deadline band at the given time
func (t *ReviewTask) Urgency(now time.Time) Urgency {
	return TaskUrgency(t.Deadline, now)
}
