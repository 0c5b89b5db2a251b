package service

import (
	"time"

	"catalog-core/internal/apperrors"
	"catalog-core/internal/models"
)

// In-memory store fakes. They mirror the repository behavior the services
// rely on, including the uniqueness guards the real stores enforce with
// partial indexes and conditional updates.

type fakeGrantStore struct {
	grants []models.RoleGrant
}

func (f *fakeGrantStore) Insert(grant *models.RoleGrant) error {
	for _, g := range f.grants {
		if g.AccountID == grant.AccountID && g.Role == grant.Role {
			return apperrors.Conflictf("account %d already holds role %s", grant.AccountID, grant.Role)
		}
	}
	grant.GrantedAt = time.Now()
	f.grants = append(f.grants, *grant)
	return nil
}

func (f *fakeGrantStore) Delete(accountID uint, role models.Role) error {
	for i, g := range f.grants {
		if g.AccountID == accountID && g.Role == role {
			f.grants = append(f.grants[:i], f.grants[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFoundf("account %d does not hold role %s", accountID, role)
}

func (f *fakeGrantStore) ListByAccount(accountID uint) ([]models.RoleGrant, error) {
	var out []models.RoleGrant
	for _, g := range f.grants {
		if g.AccountID == accountID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGrantStore) ListAll() ([]models.RoleGrant, error) {
	return append([]models.RoleGrant(nil), f.grants...), nil
}

func (f *fakeGrantStore) HasRole(accountID uint, role models.Role) (bool, error) {
	for _, g := range f.grants {
		if g.AccountID == accountID && g.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGrantStore) AccountsByRole(role models.Role) ([]uint, error) {
	var out []uint
	for _, g := range f.grants {
		if g.Role == role {
			out = append(out, g.AccountID)
		}
	}
	return out, nil
}

type fakeAccountStore struct {
	accounts map[uint]*models.Account
}

func (f *fakeAccountStore) GetByID(id uint) (*models.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, apperrors.NotFoundf("account %d not found", id)
	}
	copied := *account
	return &copied, nil
}

type clearedRole struct {
	accountID uint
	role      models.Role
}

type fakeSessionStore struct {
	activeRoles map[string]models.Role
	cleared     []clearedRole
	clearErr    error
}

func (f *fakeSessionStore) SetActiveRole(sessionID string, role models.Role) error {
	if f.activeRoles == nil {
		f.activeRoles = make(map[string]models.Role)
	}
	f.activeRoles[sessionID] = role
	return nil
}

func (f *fakeSessionStore) ClearActiveRole(accountID uint, role models.Role) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, clearedRole{accountID: accountID, role: role})
	return nil
}

type fakeRequestStore struct {
	requests map[uint]*models.RoleRequest
	grants   *fakeGrantStore
	nextID   uint
}

func newFakeRequestStore(grants *fakeGrantStore) *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[uint]*models.RoleRequest),
		grants:   grants,
	}
}

func (f *fakeRequestStore) Create(request *models.RoleRequest) error {
	for _, r := range f.requests {
		if r.AccountID == request.AccountID && r.RequestedRole == request.RequestedRole &&
			r.Status == models.RequestPending {
			return apperrors.Conflictf("account %d already has a pending request for role %s",
				request.AccountID, request.RequestedRole)
		}
	}
	f.nextID++
	request.ID = f.nextID
	request.Status = models.RequestPending
	request.CreatedAt = time.Now()
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestStore) GetByID(id uint) (*models.RoleRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFoundf("role request %d not found", id)
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestStore) ListPending() ([]models.RoleRequest, error) {
	var out []models.RoleRequest
	for _, r := range f.requests {
		if r.Status == models.RequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) Approve(id, approverID uint) (*models.RoleRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFoundf("role request %d not found", id)
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.InvalidStatef("role request %d is already %s", id, request.Status)
	}
	if err := f.grants.Insert(&models.RoleGrant{
		AccountID: request.AccountID,
		Role:      request.RequestedRole,
		GrantedBy: approverID,
	}); err != nil {
		return nil, err
	}
	now := time.Now()
	request.Status = models.RequestApproved
	request.ReviewedBy = &approverID
	request.ReviewedAt = &now
	copied := *request
	return &copied, nil
}

func (f *fakeRequestStore) Reject(id, reviewerID uint, reason string) (*models.RoleRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFoundf("role request %d not found", id)
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.InvalidStatef("role request %d is already %s", id, request.Status)
	}
	now := time.Now()
	request.Status = models.RequestRejected
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.ReviewNote = reason
	copied := *request
	return &copied, nil
}

type fakeAdoptionStore struct {
	adopters map[uint]bool
}

func (f *fakeAdoptionStore) HasAdoptions(accountID uint) (bool, error) {
	return f.adopters[accountID], nil
}

// fakeLedger backs both the task store's history writes and the
// HistoryStore reads, mirroring the shared table.
type fakeLedger struct {
	entries []models.AssignmentHistoryEntry
	nextID  uint
}

func (f *fakeLedger) append(entry models.AssignmentHistoryEntry) {
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
}

func (f *fakeLedger) ListByRound(roundID uint) ([]models.AssignmentHistoryEntry, error) {
	var out []models.AssignmentHistoryEntry
	for _, e := range f.entries {
		if e.ReviewRoundID != nil && *e.ReviewRoundID == roundID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListByProduct(productID uint) ([]models.AssignmentHistoryEntry, error) {
	var out []models.AssignmentHistoryEntry
	for _, e := range f.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTaskStore struct {
	tasks  map[uint]*models.ReviewTask
	ledger *fakeLedger
	nextID uint
}

func newFakeTaskStore(ledger *fakeLedger) *fakeTaskStore {
	return &fakeTaskStore{
		tasks:  make(map[uint]*models.ReviewTask),
		ledger: ledger,
	}
}

func (f *fakeTaskStore) Create(task *models.ReviewTask, actorID uint) error {
	for _, t := range f.tasks {
		if t.ProductID == task.ProductID && t.Active() {
			return apperrors.Conflictf("product %d already has an active review assignment", task.ProductID)
		}
	}
	f.nextID++
	task.ID = f.nextID
	task.Status = models.TaskPending
	task.AssignedAt = time.Now()
	copied := *task
	f.tasks[task.ID] = &copied

	f.ledger.append(models.AssignmentHistoryEntry{
		ReviewRoundID: task.ReviewRoundID,
		ProductID:     task.ProductID,
		ChangeType:    models.ChangeAssign,
		ChangedBy:     actorID,
	})
	return nil
}

func (f *fakeTaskStore) GetByID(id uint) (*models.ReviewTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, apperrors.NotFoundf("review task %d not found", id)
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) AdvanceStatus(id uint, from, to models.TaskStatus) (*models.ReviewTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, apperrors.NotFoundf("review task %d not found", id)
	}
	if task.Status != from {
		return nil, apperrors.InvalidStatef("review task %d is no longer %s", id, from)
	}
	now := time.Now()
	task.Status = to
	switch to {
	case models.TaskInProgress:
		task.StartedAt = &now
	case models.TaskCompleted:
		task.CompletedAt = &now
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Reassign(id, newReviewerID, actorID uint, reason string) (*models.ReviewTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, apperrors.NotFoundf("review task %d not found", id)
	}
	previous := task.AssignedTo
	task.AssignedTo = &newReviewerID

	f.ledger.append(models.AssignmentHistoryEntry{
		ReviewRoundID:    task.ReviewRoundID,
		ProductID:        task.ProductID,
		PreviousAssignee: previous,
		ChangeType:       models.ChangeReassign,
		ChangedBy:        actorID,
		Reason:           reason,
	})
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Remove(id, actorID uint, reason string) error {
	task, ok := f.tasks[id]
	if !ok {
		return apperrors.NotFoundf("review task %d not found", id)
	}
	delete(f.tasks, id)

	f.ledger.append(models.AssignmentHistoryEntry{
		ReviewRoundID:    task.ReviewRoundID,
		ProductID:        task.ProductID,
		PreviousAssignee: task.AssignedTo,
		ChangeType:       models.ChangeRemove,
		ChangedBy:        actorID,
		Reason:           reason,
	})
	return nil
}

func (f *fakeTaskStore) CountActiveByReviewer(reviewerID uint) (int, error) {
	count := 0
	for _, t := range f.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == reviewerID && t.Active() {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskStore) ListByReviewer(reviewerID uint) ([]models.ReviewTask, error) {
	var out []models.ReviewTask
	for _, t := range f.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == reviewerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListByRound(roundID uint) ([]models.ReviewTask, error) {
	var out []models.ReviewTask
	for _, t := range f.tasks {
		if t.ReviewRoundID != nil && *t.ReviewRoundID == roundID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeRoundStore struct {
	rounds map[uint]*models.ReviewRound
	nextID uint
}

func newFakeRoundStore() *fakeRoundStore {
	return &fakeRoundStore{rounds: make(map[uint]*models.ReviewRound)}
}

func (f *fakeRoundStore) Create(round *models.ReviewRound) error {
	f.nextID++
	round.ID = f.nextID
	round.Status = models.RoundOpen
	round.CreatedAt = time.Now()
	copied := *round
	f.rounds[round.ID] = &copied
	return nil
}

func (f *fakeRoundStore) GetByID(id uint) (*models.ReviewRound, error) {
	round, ok := f.rounds[id]
	if !ok {
		return nil, apperrors.NotFoundf("review round %d not found", id)
	}
	copied := *round
	return &copied, nil
}

func (f *fakeRoundStore) Close(id uint) error {
	round, ok := f.rounds[id]
	if !ok {
		return apperrors.NotFoundf("review round %d not found", id)
	}
	if round.Status != models.RoundOpen {
		return apperrors.InvalidStatef("review round %d is already closed", id)
	}
	round.Status = models.RoundClosed
	return nil
}
