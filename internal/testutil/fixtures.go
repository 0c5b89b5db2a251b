package testutil

import (
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"catalog-core/internal/models"
)

// Fixtures holds test data
type Fixtures struct {
	DB             *sql.DB
	AdminAccount   *models.Account
	Reviewer       *models.Account
	SecondReviewer *models.Account
	Company        *models.Account
	Plain          *models.Account
}

// SetupFixtures creates a baseline set of accounts and grants. The admin
// account also holds the reviewer role, so it exercises the multi-role
// active-role selection path.
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{
		DB: db,
	}

	fixtures.AdminAccount = createAccount(t, db, "admin@test.com", "Admin")
	fixtures.Reviewer = createAccount(t, db, "reviewer@test.com", "Reviewer")
	fixtures.SecondReviewer = createAccount(t, db, "reviewer2@test.com", "Second Reviewer")
	fixtures.Company = createAccount(t, db, "company@test.com", "Company")
	fixtures.Plain = createAccount(t, db, "plain@test.com", "Plain")

	grantRole(t, db, fixtures.AdminAccount.ID, models.RoleAdmin, fixtures.AdminAccount.ID)
	grantRole(t, db, fixtures.AdminAccount.ID, models.RoleReviewer, fixtures.AdminAccount.ID)
	grantRole(t, db, fixtures.Reviewer.ID, models.RoleReviewer, fixtures.AdminAccount.ID)
	grantRole(t, db, fixtures.SecondReviewer.ID, models.RoleReviewer, fixtures.AdminAccount.ID)
	grantRole(t, db, fixtures.Company.ID, models.RoleCompany, fixtures.AdminAccount.ID)

	return fixtures
}

// createAccount creates a verified, active account
func createAccount(t *testing.T, db *sql.DB, email, displayName string) *models.Account {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var account models.Account
	err = db.QueryRow(`
		INSERT INTO accounts (email, password_hash, display_name, email_verified)
		VALUES ($1, $2, $3, true)
		RETURNING id, email, display_name, email_verified, is_active, created_at, updated_at
	`, email, string(hashedPassword), displayName).Scan(
		&account.ID, &account.Email, &account.DisplayName,
		&account.EmailVerified, &account.IsActive, &account.CreatedAt, &account.UpdatedAt,
	)

	if err != nil {
		t.Fatalf("Failed to create account %s: %v", email, err)
	}

	return &account
}

// grantRole inserts a role grant for an account
func grantRole(t *testing.T, db *sql.DB, accountID uint, role models.Role, grantedBy uint) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO role_grants (account_id, role, granted_by) VALUES ($1, $2, $3)",
		accountID, role, grantedBy,
	)
	if err != nil {
		t.Fatalf("Failed to grant role %s to account %d: %v", role, accountID, err)
	}
}

// CreateRound creates an open review round for testing
func (f *Fixtures) CreateRound(t *testing.T, roundNumber int, defaultDeadline *time.Time) *models.ReviewRound {
	t.Helper()

	var round models.ReviewRound
	err := f.DB.QueryRow(`
		INSERT INTO review_rounds (round_number, name, default_deadline)
		VALUES ($1, $2, $3)
		RETURNING id, round_number, name, default_deadline, status, created_at
	`, roundNumber, "Test Round", defaultDeadline).Scan(
		&round.ID, &round.RoundNumber, &round.Name,
		&round.DefaultDeadline, &round.Status, &round.CreatedAt,
	)

	if err != nil {
		t.Fatalf("Failed to create review round: %v", err)
	}

	return &round
}

// CreateTask creates an assigned review task for testing
func (f *Fixtures) CreateTask(t *testing.T, productID, assignedTo uint, status models.TaskStatus) *models.ReviewTask {
	t.Helper()

	var task models.ReviewTask
	err := f.DB.QueryRow(`
		INSERT INTO review_tasks (product_id, assigned_to, status)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, assigned_to, status, priority, deadline,
		          review_round_id, assigned_at, started_at, completed_at, notes
	`, productID, assignedTo, status).Scan(
		&task.ID, &task.ProductID, &task.AssignedTo, &task.Status, &task.Priority,
		&task.Deadline, &task.ReviewRoundID, &task.AssignedAt,
		&task.StartedAt, &task.CompletedAt, &task.Notes,
	)

	if err != nil {
		t.Fatalf("Failed to create review task: %v", err)
	}

	return &task
}

// RecordAdoption records a product adoption for an account
func (f *Fixtures) RecordAdoption(t *testing.T, productID, accountID uint) {
	t.Helper()

	_, err := f.DB.Exec(
		"INSERT INTO product_adoptions (product_id, account_id) VALUES ($1, $2)",
		productID, accountID,
	)
	if err != nil {
		t.Fatalf("Failed to record adoption: %v", err)
	}
}
