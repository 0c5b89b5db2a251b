package repository

import (
	"database/sql"
	"fmt"
)

// AdoptionRepository reads the product-adoption records maintained by the
// catalog. This core never writes them; they feed the conflict-of-interest
// rule.
type AdoptionRepository struct {
	db *sql.DB
}

// NewAdoptionRepository creates a new adoption repository
func NewAdoptionRepository(db *sql.DB) *AdoptionRepository {
	return &AdoptionRepository{db: db}
}

// HasAdoptions reports whether the account has any adoption record
func (r *AdoptionRepository) HasAdoptions(accountID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM product_adoptions WHERE account_id = $1)`,
		accountID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product adoptions: %w", err)
	}
	return exists, nil
}
