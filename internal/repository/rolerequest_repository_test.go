package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

var requestColumns = []string{
	"id", "account_id", "requested_role", "justification", "status",
	"created_at", "reviewed_by", "reviewed_at", "review_note",
}

func TestRoleRequestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)

	mock.ExpectQuery("INSERT INTO role_requests").
		WithArgs(uint(7), models.RoleReviewer, "domain expertise", models.RequestPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	request := &models.RoleRequest{
		AccountID:     7,
		RequestedRole: models.RoleReviewer,
		Justification: "domain expertise",
	}
	err = repo.Create(request)
	require.NoError(t, err)
	assert.Equal(t, uint(1), request.ID)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestCreateOnePendingConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)

	// The partial unique index rejects a second pending request.
	mock.ExpectQuery("INSERT INTO role_requests").
		WillReturnError(&pq.Error{Code: "23505"})

	err = repo.Create(&models.RoleRequest{
		AccountID:     7,
		RequestedRole: models.RoleReviewer,
		Justification: "again",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestApprove(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)
	now := time.Now()
	approver := uint(1)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE role_requests").
		WithArgs(uint(5), approver, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			5, 7, "reviewer", "domain expertise", "approved",
			now, approver, now, "",
		))
	mock.ExpectExec("INSERT INTO role_grants").
		WithArgs(uint(7), models.RoleReviewer, approver, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	approved, err := repo.Approve(5, approver)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)
	assert.Equal(t, models.RoleReviewer, approved.RequestedRole)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, approver, *approved.ReviewedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestApproveGrantConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)
	now := time.Now()

	// The grant insert hits the primary key, so the whole transaction
	// rolls back and the request stays pending.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE role_requests").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			5, 7, "reviewer", "domain expertise", "approved",
			now, 1, now, "",
		))
	mock.ExpectExec("INSERT INTO role_grants").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err = repo.Approve(5, 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestApproveAlreadyDecided(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)
	now := time.Now()

	// The conditional update matches nothing; the follow-up read finds the
	// request already approved.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE role_requests").
		WillReturnRows(sqlmock.NewRows(requestColumns))
	mock.ExpectQuery("SELECT (.+) FROM role_requests").
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			5, 7, "reviewer", "domain expertise", "approved",
			now, 1, now, "",
		))
	mock.ExpectRollback()

	_, err = repo.Approve(5, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestApproveNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE role_requests").
		WillReturnRows(sqlmock.NewRows(requestColumns))
	mock.ExpectQuery("SELECT (.+) FROM role_requests").
		WithArgs(uint(99)).
		WillReturnRows(sqlmock.NewRows(requestColumns))
	mock.ExpectRollback()

	_, err = repo.Approve(99, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequestReject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRoleRequestRepository(db)
	now := time.Now()

	mock.ExpectQuery("UPDATE role_requests").
		WithArgs(uint(5), uint(1), sqlmock.AnyArg(), "insufficient experience").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			5, 7, "reviewer", "domain expertise", "rejected",
			now, 1, now, "insufficient experience",
		))

	rejected, err := repo.Reject(5, 1, "insufficient experience")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Equal(t, "insufficient experience", rejected.ReviewNote)
	assert.NoError(t, mock.ExpectationsWereMet())
}
