package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// AccountRepository handles account database operations
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(account *models.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, display_name, email_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.EmailVerified,
		account.IsActive,
		now,
		now,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("account with email %s already exists", account.Email)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(id uint) (*models.Account, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	return r.getOne(`WHERE email = $1`, email)
}

func (r *AccountRepository) getOne(where string, arg any) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, display_name, email_verified, is_active, created_at, updated_at
		FROM accounts
	` + where

	account := &models.Account{}
	err := r.db.QueryRow(query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.DisplayName,
		&account.EmailVerified,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
