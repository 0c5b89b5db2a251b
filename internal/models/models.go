package models

import (
	"time"
)

// Account represents an account in the system
type Account struct {
	ID            uint      `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RoleGrant represents a single (account, role) grant.
// Grants are created by approval or direct admin action and deleted by
// revocation; they are never updated in place.
type RoleGrant struct {
	AccountID uint      `json:"account_id" db:"account_id"`
	Role      Role      `json:"role" db:"role"`
	GrantedBy uint      `json:"granted_by" db:"granted_by"`
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`
}

// RequestStatus is the lifecycle state of a RoleRequest
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RoleRequest represents an account's request for an elevated role.
// It transitions from pending to approved or rejected exactly once and is
// immutable thereafter.
type RoleRequest struct {
	ID            uint          `json:"id" db:"id"`
	AccountID     uint          `json:"account_id" db:"account_id"`
	RequestedRole Role          `json:"requested_role" db:"requested_role"`
	Justification string        `json:"justification" db:"justification"`
	Status        RequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	ReviewedBy    *uint         `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewNote    string        `json:"review_note,omitempty" db:"review_note"`
}

// ReviewRound groups review tasks sharing a round number and default
// deadline. Purely organizational; it does not change task invariants.
type ReviewRound struct {
	ID              uint       `json:"id" db:"id"`
	RoundNumber     int        `json:"round_number" db:"round_number"`
	Name            string     `json:"name" db:"name"`
	DefaultDeadline *time.Time `json:"default_deadline,omitempty" db:"default_deadline"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Round statuses
const (
	RoundOpen   = "open"
	RoundClosed = "closed"
)

// ReviewTask tracks one product's review lifecycle and its assignee.
// Invariant: a product has at most one task with an assignee and status
// pending or in_progress at any time.
type ReviewTask struct {
	ID            uint       `json:"id" db:"id"`
	ProductID     uint       `json:"product_id" db:"product_id"`
	AssignedTo    *uint      `json:"assigned_to,omitempty" db:"assigned_to"`
	Status        TaskStatus `json:"status" db:"status"`
	Priority      Priority   `json:"priority" db:"priority"`
	Deadline      *time.Time `json:"deadline,omitempty" db:"deadline"`
	ReviewRoundID *uint      `json:"review_round_id,omitempty" db:"review_round_id"`
	AssignedAt    time.Time  `json:"assigned_at" db:"assigned_at"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Notes         string     `json:"notes,omitempty" db:"notes"`
}

// Active reports whether the task still counts against the product's
// active-assignment slot and the reviewer's workload.
func (t *ReviewTask) Active() bool {
	return t.AssignedTo != nil && (t.Status == TaskPending || t.Status == TaskInProgress)
}

// ChangeType classifies a structural change to a task's assignment
type ChangeType string

const (
	ChangeAssign   ChangeType = "assign"
	ChangeReassign ChangeType = "reassign"
	ChangeRemove   ChangeType = "remove"
)

// AssignmentHistoryEntry is one append-only ledger row. Entries are never
// updated or deleted.
type AssignmentHistoryEntry struct {
	ID               uint       `json:"id" db:"id"`
	ReviewRoundID    *uint      `json:"review_round_id,omitempty" db:"review_round_id"`
	ProductID        uint       `json:"product_id" db:"product_id"`
	PreviousAssignee *uint      `json:"previous_assignee,omitempty" db:"previous_assignee"`
	ChangeType       ChangeType `json:"change_type" db:"change_type"`
	ChangedBy        uint       `json:"changed_by" db:"changed_by"`
	Reason           string     `json:"reason,omitempty" db:"reason"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Session represents an authenticated session. ActiveRole carries the
// per-session role selection for multi-role accounts.
type Session struct {
	ID         string    `json:"id" db:"id"`
	AccountID  uint      `json:"account_id" db:"account_id"`
	JTI        string    `json:"jti" db:"jti"`
	ActiveRole *Role     `json:"active_role,omitempty" db:"active_role"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	IPAddress  string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string    `json:"user_agent,omitempty" db:"user_agent"`
}

// AccountWithRoles extends Account with its resolved roles
type AccountWithRoles struct {
	Account
	Roles []Role `json:"roles"`
}
