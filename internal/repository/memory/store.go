// Package memory keeps wallets in process memory. It honours the same
// compare-and-swap contract as the PostgreSQL repository and is meant for
// local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"wallet_api/internal/models"
	"wallet_api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]models.Wallet
	now     func() time.Time
}

func New() *Store {
	return &Store{
		wallets: make(map[uuid.UUID]models.Wallet),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Insert(ctx context.Context, w models.Wallet) (models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return models.Wallet{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[w.ID]; ok {
		return models.Wallet{}, repository.ErrWalletAlreadyExist
	}
	w.Balance = w.Balance.Round(models.BalanceScale)
	s.wallets[w.ID] = w
	return w, nil
}

func (s *Store) Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return models.Wallet{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return models.Wallet{}, repository.ErrWalletNotFound
	}
	return w, nil
}

func (s *Store) ConditionalUpdate(
	ctx context.Context,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (int64, error) {
	_, applied, err := s.swap(ctx, walletID, expectedVersion, newBalance, newVersion)
	if err != nil || !applied {
		return 0, err
	}
	return 1, nil
}

func (s *Store) Begin(ctx context.Context) (repository.WalletTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{store: s}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Name() string {
	return "memory"
}

// swap applies the update when the stored version matches and returns the
// record as it was before the write.
func (s *Store) swap(
	ctx context.Context,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (models.Wallet, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Wallet{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok || w.Version != expectedVersion {
		return models.Wallet{}, false, nil
	}
	prev := w
	w.Balance = newBalance.Round(models.BalanceScale)
	w.Version = newVersion
	w.UpdatedAt = s.now()
	s.wallets[walletID] = w
	return prev, true, nil
}

// restore puts prev back unless another writer has moved past version.
func (s *Store) restore(prev models.Wallet, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.wallets[prev.ID]; ok && cur.Version == version {
		s.wallets[prev.ID] = prev
	}
}

type undoEntry struct {
	prev    models.Wallet
	version int64
}

// tx applies writes immediately and undoes them on Rollback.
type tx struct {
	store  *Store
	mu     sync.Mutex
	undo   []undoEntry
	closed bool
}

func (t *tx) Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	if t.isClosed() {
		return models.Wallet{}, repository.ErrTxClosed
	}
	return t.store.Find(ctx, walletID)
}

func (t *tx) ConditionalUpdate(
	ctx context.Context,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, repository.ErrTxClosed
	}
	prev, applied, err := t.store.swap(ctx, walletID, expectedVersion, newBalance, newVersion)
	if err != nil || !applied {
		return 0, err
	}
	t.undo = append(t.undo, undoEntry{prev: prev, version: newVersion})
	return 1, nil
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return repository.ErrTxClosed
	}
	t.closed = true
	t.undo = nil
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return repository.ErrTxClosed
	}
	t.closed = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.store.restore(t.undo[i].prev, t.undo[i].version)
	}
	t.undo = nil
	return nil
}

func (t *tx) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
