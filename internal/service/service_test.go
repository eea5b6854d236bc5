package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/otoworks/otowork-backend/internal/payment"
	"github.com/otoworks/otowork-backend/internal/repository"
)

// In-memory repository fakes. Status transitions take the same
// compare-and-set shape as the SQL implementations so the race
// semantics under test match production.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*repository.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*repository.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) SaveRefreshToken(ctx context.Context, t *repository.RefreshToken) error {
	return nil
}

func (r *memUserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	return nil, nil
}

func (r *memUserRepo) DeleteRefreshToken(ctx context.Context, token string) error { return nil }

func (r *memUserRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) error { return nil }

type memProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*repository.Project
	seq      int
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[string]*repository.Project)}
}

func (r *memProjectRepo) Create(ctx context.Context, p *repository.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("project-%d", r.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) FindByID(ctx context.Context, id string) (*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) FindAll(ctx context.Context, filter repository.ProjectFilter) ([]*repository.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Project
	for _, p := range r.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.ClientID != "" && p.ClientID != filter.ClientID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProjectRepo) Update(ctx context.Context, p *repository.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

type memProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]*repository.Proposal
	seq       int
}

func newMemProposalRepo() *memProposalRepo {
	return &memProposalRepo{proposals: make(map[string]*repository.Proposal)}
}

func (r *memProposalRepo) Create(ctx context.Context, p *repository.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("proposal-%d", r.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.proposals[p.ID] = &cp
	return nil
}

func (r *memProposalRepo) FindByID(ctx context.Context, id string) (*repository.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProposalRepo) FindByProjectID(ctx context.Context, projectID string) ([]*repository.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Proposal
	for _, p := range r.proposals {
		if p.ProjectID == projectID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProposalRepo) FindByCreatorID(ctx context.Context, creatorID string) ([]*repository.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Proposal
	for _, p := range r.proposals {
		if p.CreatorID == creatorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProposalRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok || p.Status != from {
		return false, nil
	}
	// One accepted proposal per project, like the partial unique index.
	if to == "accepted" {
		for _, other := range r.proposals {
			if other.ID != id && other.ProjectID == p.ProjectID && other.Status == "accepted" {
				return false, repository.ErrAcceptedConflict
			}
		}
	}
	p.Status = to
	return true, nil
}

type memEscrowRepo struct {
	mu  sync.Mutex
	txs map[string]*repository.EscrowTransaction
	seq int
}

func newMemEscrowRepo() *memEscrowRepo {
	return &memEscrowRepo{txs: make(map[string]*repository.EscrowTransaction)}
}

func (r *memEscrowRepo) Create(ctx context.Context, tx *repository.EscrowTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	tx.ID = fmt.Sprintf("escrow-%d", r.seq)
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *memEscrowRepo) FindByID(ctx context.Context, id string) (*repository.EscrowTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *memEscrowRepo) FindByProjectID(ctx context.Context, projectID string) (*repository.EscrowTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ProjectID == projectID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEscrowRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	return true, nil
}

type memBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]*repository.CreatorBalance

	// Injected faults for exercising compensation paths.
	settleErr error
	dropErr   error
}

func newMemBalanceRepo() *memBalanceRepo {
	return &memBalanceRepo{balances: make(map[string]*repository.CreatorBalance)}
}

func (r *memBalanceRepo) get(creatorID string) *repository.CreatorBalance {
	b, ok := r.balances[creatorID]
	if !ok {
		b = &repository.CreatorBalance{CreatorID: creatorID}
		r.balances[creatorID] = b
	}
	return b
}

func (r *memBalanceRepo) FindByCreatorID(ctx context.Context, creatorID string) (*repository.CreatorBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[creatorID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBalanceRepo) AddPending(ctx context.Context, creatorID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(creatorID).Pending += amount
	return nil
}

func (r *memBalanceRepo) SettlePending(ctx context.Context, creatorID string, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settleErr != nil {
		return false, r.settleErr
	}
	b := r.get(creatorID)
	if b.Pending < amount {
		return false, nil
	}
	b.Pending -= amount
	b.Available += amount
	b.TotalEarned += amount
	return true, nil
}

func (r *memBalanceRepo) DropPending(ctx context.Context, creatorID string, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropErr != nil {
		return false, r.dropErr
	}
	b := r.get(creatorID)
	if b.Pending < amount {
		return false, nil
	}
	b.Pending -= amount
	return true, nil
}

func (r *memBalanceRepo) Reserve(ctx context.Context, creatorID string, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.get(creatorID)
	if b.Available < amount {
		return false, nil
	}
	b.Available -= amount
	return true, nil
}

func (r *memBalanceRepo) Restore(ctx context.Context, creatorID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(creatorID).Available += amount
	return nil
}

func (r *memBalanceRepo) Settle(ctx context.Context, creatorID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(creatorID).Withdrawn += amount
	return nil
}

type memDeliverableRepo struct {
	mu           sync.Mutex
	deliverables []*repository.Deliverable
	seq          int
}

func newMemDeliverableRepo() *memDeliverableRepo {
	return &memDeliverableRepo{}
}

func (r *memDeliverableRepo) Create(ctx context.Context, d *repository.Deliverable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	d.ID = fmt.Sprintf("deliverable-%d", r.seq)
	d.CreatedAt = time.Now()
	cp := *d
	r.deliverables = append(r.deliverables, &cp)
	return nil
}

func (r *memDeliverableRepo) FindByProjectID(ctx context.Context, projectID string) ([]*repository.Deliverable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Deliverable
	for _, d := range r.deliverables {
		if d.ProjectID == projectID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDeliverableRepo) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, d := range r.deliverables {
		if d.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

type memWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[string]*repository.WithdrawalRequest
	seq         int
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{withdrawals: make(map[string]*repository.WithdrawalRequest)}
}

func (r *memWithdrawalRepo) Create(ctx context.Context, w *repository.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	w.ID = fmt.Sprintf("withdrawal-%d", r.seq)
	w.RequestDate = time.Now()
	cp := *w
	r.withdrawals[w.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) FindByID(ctx context.Context, id string) (*repository.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWithdrawalRepo) FindByCreatorID(ctx context.Context, creatorID string) ([]*repository.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.WithdrawalRequest
	for _, w := range r.withdrawals {
		if w.CreatorID == creatorID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memWithdrawalRepo) FindByStatus(ctx context.Context, status string) ([]*repository.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.WithdrawalRequest
	for _, w := range r.withdrawals {
		if w.Status == status {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memWithdrawalRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	return true, nil
}

func (r *memWithdrawalRepo) MarkCompleted(ctx context.Context, id, from string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = "completed"
	now := time.Now()
	w.CompleteDate = &now
	return true, nil
}

func (r *memWithdrawalRepo) MarkFailed(ctx context.Context, id, from, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = "failed"
	w.FailureReason = &reason
	return true, nil
}

// fakeGateway records charges and can be told to decline.
type fakeGateway struct {
	mu       sync.Mutex
	decline  bool
	charges  []int64
	refunds  []string
	chargeID int
}

func (g *fakeGateway) Charge(ctx context.Context, clientID string, amount int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.decline {
		return "", payment.ErrDeclined
	}
	g.chargeID++
	g.charges = append(g.charges, amount)
	return fmt.Sprintf("ch-%d", g.chargeID), nil
}

func (g *fakeGateway) Refund(ctx context.Context, ref string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, ref)
	return nil
}
