//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/domain/ports/adapter"
	"food-rescue-rewards/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock EventRepository ----

type MockEventRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Event

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Event, error)
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{store: make(map[string]*model.Event)}
}

var _ repository.EventRepository = (*MockEventRepo)(nil)

func (r *MockEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MockEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.store[e.ID] = &cp
	return nil
}

// ---- Mock QRCodeRepository ----

type MockQRCodeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.QRCode // keyed by QR code ID

	FindActiveFunc         func(ctx context.Context, tx repository.Tx, eventID string, typ model.QRType) (*model.QRCode, error)
	IncrementUsedCountFunc func(ctx context.Context, tx repository.Tx, id string) error
}

func NewMockQRCodeRepo() *MockQRCodeRepo {
	return &MockQRCodeRepo{store: make(map[string]*model.QRCode)}
}

var _ repository.QRCodeRepository = (*MockQRCodeRepo)(nil)

func (r *MockQRCodeRepo) FindActive(ctx context.Context, tx repository.Tx, eventID string, typ model.QRType) (*model.QRCode, error) {
	if r.FindActiveFunc != nil {
		return r.FindActiveFunc(ctx, tx, eventID, typ)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.store {
		if q.EventID == eventID && q.Type == typ && q.Usable(time.Now()) {
			cp := *q
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockQRCodeRepo) IncrementUsedCount(ctx context.Context, tx repository.Tx, id string) error {
	if r.IncrementUsedCountFunc != nil {
		return r.IncrementUsedCountFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.UsedCount++
	return nil
}

func (r *MockQRCodeRepo) Save(ctx context.Context, tx repository.Tx, q *model.QRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *q
	r.store[q.ID] = &cp
	return nil
}

// ---- Mock ActivityRepository ----

type MockActivityRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Activity // keyed by activity ID

	FindByUserAndEventFunc func(ctx context.Context, tx repository.Tx, userID, eventID string) (*model.Activity, error)
	InsertFunc             func(ctx context.Context, tx repository.Tx, a *model.Activity) error
	AttachRewardFunc       func(ctx context.Context, tx repository.Tx, id string, nftID *string, txHash string) error
}

func NewMockActivityRepo() *MockActivityRepo {
	return &MockActivityRepo{store: make(map[string]*model.Activity)}
}

var _ repository.ActivityRepository = (*MockActivityRepo)(nil)

func (r *MockActivityRepo) FindByUserAndEvent(ctx context.Context, tx repository.Tx, userID, eventID string) (*model.Activity, error) {
	if r.FindByUserAndEventFunc != nil {
		return r.FindByUserAndEventFunc(ctx, tx, userID, eventID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.store {
		if a.UserID == userID && a.EventID == eventID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivityRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// The in-memory stand-in for the unique (event, user) index.
	for _, ex := range r.store {
		if ex.UserID == a.UserID && ex.EventID == a.EventID {
			return domain.ErrAlreadyParticipated
		}
	}
	cp := *a
	r.store[a.ID] = &cp
	return nil
}

func (r *MockActivityRepo) AttachReward(ctx context.Context, tx repository.Tx, id string, nftID *string, txHash string) error {
	if r.AttachRewardFunc != nil {
		return r.AttachRewardFunc(ctx, tx, id, nftID, txHash)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.NFTID = nftID
	a.TxHash = &txHash
	return nil
}

// ---- Mock PseudonymousActivityRepository ----

type MockPseudonymousRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PseudonymousActivity

	FindByPseudonymAndEventFunc func(ctx context.Context, tx repository.Tx, pseudonymousID, eventID string) (*model.PseudonymousActivity, error)
	InsertFunc                  func(ctx context.Context, tx repository.Tx, a *model.PseudonymousActivity) error
	AttachProofFunc             func(ctx context.Context, tx repository.Tx, id string, proof model.ChainProof) error
	StatsFunc                   func(ctx context.Context, tx repository.Tx) (*model.AnonymousStats, error)
}

func NewMockPseudonymousRepo() *MockPseudonymousRepo {
	return &MockPseudonymousRepo{store: make(map[string]*model.PseudonymousActivity)}
}

var _ repository.PseudonymousActivityRepository = (*MockPseudonymousRepo)(nil)

func (r *MockPseudonymousRepo) FindByPseudonymAndEvent(ctx context.Context, tx repository.Tx, pseudonymousID, eventID string) (*model.PseudonymousActivity, error) {
	if r.FindByPseudonymAndEventFunc != nil {
		return r.FindByPseudonymAndEventFunc(ctx, tx, pseudonymousID, eventID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.store {
		if a.PseudonymousID == pseudonymousID && a.EventID == eventID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPseudonymousRepo) Insert(ctx context.Context, tx repository.Tx, a *model.PseudonymousActivity) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.store {
		if ex.PseudonymousID == a.PseudonymousID && ex.EventID == a.EventID {
			return domain.ErrAlreadyParticipated
		}
	}
	cp := *a
	r.store[a.ID] = &cp
	return nil
}

func (r *MockPseudonymousRepo) AttachProof(ctx context.Context, tx repository.Tx, id string, proof model.ChainProof) error {
	if r.AttachProofFunc != nil {
		return r.AttachProofFunc(ctx, tx, id, proof)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Proof = &proof
	a.RewardsDistributed = true
	return nil
}

func (r *MockPseudonymousRepo) ListByPseudonym(ctx context.Context, tx repository.Tx, pseudonymousID string) ([]*model.PseudonymousActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.PseudonymousActivity
	for _, a := range r.store {
		if a.PseudonymousID == pseudonymousID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPseudonymousRepo) ListUnrewardedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PseudonymousActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.PseudonymousActivity
	for _, a := range r.store {
		if !a.RewardsDistributed && a.CreatedAt.Before(olderThan) {
			cp := *a
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockPseudonymousRepo) Stats(ctx context.Context, tx repository.Tx) (*model.AnonymousStats, error) {
	if r.StatsFunc != nil {
		return r.StatsFunc(ctx, tx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &model.AnonymousStats{TotalActivities: int64(len(r.store))}
	seen := make(map[string]struct{})
	for _, a := range r.store {
		seen[a.PseudonymousID] = struct{}{}
		if a.RewardsDistributed {
			s.TotalRewardsDistributed += a.RewardAmount
		}
	}
	s.UniqueParticipants = int64(len(seen))
	return s, nil
}

// ---- Mock RewardRepository ----

type MockRewardRepo struct {
	mu    sync.Mutex
	store map[string]*model.Reward

	AppendFunc        func(ctx context.Context, tx repository.Tx, r *model.Reward) error
	MarkCompletedFunc func(ctx context.Context, tx repository.Tx, id, txHash string, nftID *string, fromPool bool) error
	MarkFailedFunc    func(ctx context.Context, tx repository.Tx, id string) error
}

func NewMockRewardRepo() *MockRewardRepo {
	return &MockRewardRepo{store: make(map[string]*model.Reward)}
}

var _ repository.RewardRepository = (*MockRewardRepo)(nil)

func (r *MockRewardRepo) Append(ctx context.Context, tx repository.Tx, rw *model.Reward) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, rw)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rw
	r.store[rw.ID] = &cp
	return nil
}

func (r *MockRewardRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, txHash string, nftID *string, fromPool bool) error {
	if r.MarkCompletedFunc != nil {
		return r.MarkCompletedFunc(ctx, tx, id, txHash, nftID, fromPool)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rw, ok := r.store[id]; ok {
		rw.Status = model.RewardStatusCompleted
		rw.TxHash = txHash
		rw.NFTID = nftID
		rw.FromPool = fromPool
	}
	return nil
}

func (r *MockRewardRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	if r.MarkFailedFunc != nil {
		return r.MarkFailedFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rw, ok := r.store[id]; ok {
		rw.Status = model.RewardStatusFailed
	}
	return nil
}

// Entries returns a snapshot of appended ledger rows for assertions.
func (r *MockRewardRepo) Entries() []*model.Reward {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Reward, 0, len(r.store))
	for _, rw := range r.store {
		cp := *rw
		out = append(out, &cp)
	}
	return out
}

// =============================
// Adapters
// =============================

// ---- Mock ChainGateway ----

type MockChainGateway struct {
	mu        sync.Mutex
	Mints     []adapter.MintRequest
	Transfers []struct {
		Recipient string
		Amount    float64
	}

	MintToPoolFunc func(ctx context.Context, req adapter.MintRequest) (*adapter.TxResult, error)
	TransferFunc   func(ctx context.Context, recipient string, amount float64) (*adapter.TxResult, error)
}

var _ adapter.ChainGateway = (*MockChainGateway)(nil)

func (m *MockChainGateway) Name() string { return "mock" }

func (m *MockChainGateway) MintToPool(ctx context.Context, req adapter.MintRequest) (*adapter.TxResult, error) {
	m.mu.Lock()
	m.Mints = append(m.Mints, req)
	m.mu.Unlock()
	if m.MintToPoolFunc != nil {
		return m.MintToPoolFunc(ctx, req)
	}
	tokenID := "1"
	return &adapter.TxResult{TxHash: "0xmint", BlockNumber: 100, TokenID: &tokenID}, nil
}

func (m *MockChainGateway) Transfer(ctx context.Context, recipient string, amount float64) (*adapter.TxResult, error) {
	m.mu.Lock()
	m.Transfers = append(m.Transfers, struct {
		Recipient string
		Amount    float64
	}{recipient, amount})
	m.mu.Unlock()
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, recipient, amount)
	}
	return &adapter.TxResult{TxHash: "0xtransfer", BlockNumber: 101}, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Tests
// that need to verify transactional behavior assign WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}
