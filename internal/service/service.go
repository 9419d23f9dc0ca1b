package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wallet_api/internal/models"
	"wallet_api/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=../../test/mock_wallet_store.go -package=test WalletStore,BalanceCache
//go:generate mockgen -destination=../../test/mock_wallet_tx.go -package=test wallet_api/internal/repository WalletTx

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 10 * time.Microsecond
)

type WalletStore interface {
	Insert(ctx context.Context, w models.Wallet) (models.Wallet, error)
	Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error)
	Begin(ctx context.Context) (repository.WalletTx, error)
}

// BalanceCache serves GetBalance. It is never consulted when applying an operation.
type BalanceCache interface {
	Get(ctx context.Context, walletID uuid.UUID) (models.Wallet, bool, error)
	Put(ctx context.Context, w models.Wallet) error
	Invalidate(ctx context.Context, walletID uuid.UUID) error
}

type MetricsRecorder interface {
	RecordOperation(operation, result string, took time.Duration)
	RecordRetry(reason string)
	RecordCacheHit()
	RecordCacheMiss()
}

type NoopMetrics struct{}

func (NoopMetrics) RecordOperation(string, string, time.Duration) {}
func (NoopMetrics) RecordRetry(string)                            {}
func (NoopMetrics) RecordCacheHit()                               {}
func (NoopMetrics) RecordCacheMiss()                              {}

type Option func(*WalletService)

func WithMaxRetries(n int) Option {
	return func(s *WalletService) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(s *WalletService) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

func WithCache(c BalanceCache) Option {
	return func(s *WalletService) { s.cache = c }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *WalletService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *WalletService) { s.now = now }
}

type WalletService struct {
	store      WalletStore
	cache      BalanceCache
	metrics    MetricsRecorder
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

func NewWalletService(store WalletStore, logger *slog.Logger, opts ...Option) *WalletService {
	s := &WalletService{
		store:      store,
		metrics:    NoopMetrics{},
		logger:     logger,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WalletService) CreateWallet(ctx context.Context) (models.Wallet, error) {
	w, err := s.store.Insert(ctx, models.NewWallet(s.now()))
	if err != nil {
		s.logger.Error("CreateWallet failed", slog.Any("err", err))
		return models.Wallet{}, err
	}
	s.logger.Info("Wallet created", slog.String("wallet_id", w.ID.String()))
	return w, nil
}

// GetBalance returns the wallet snapshot. Malformed and unknown ids both
// yield ErrWalletNotFound.
func (s *WalletService) GetBalance(ctx context.Context, rawID string) (models.Wallet, error) {
	walletID, err := models.ParseWalletID(rawID)
	if err != nil {
		s.logger.Warn("GetBalance: malformed wallet id", slog.String("wallet_id", rawID))
		return models.Wallet{}, ErrWalletNotFound
	}

	if s.cache != nil {
		w, ok, err := s.cache.Get(ctx, walletID)
		switch {
		case err != nil:
			s.logger.Warn("GetBalance: cache lookup failed",
				slog.String("wallet_id", rawID),
				slog.Any("err", err),
			)
		case ok:
			s.metrics.RecordCacheHit()
			return w, nil
		default:
			s.metrics.RecordCacheMiss()
		}
	}

	w, err := s.store.Find(ctx, walletID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			s.logger.Warn("GetBalance: wallet not found", slog.String("wallet_id", rawID))
			return models.Wallet{}, ErrWalletNotFound
		}
		s.logger.Error("GetBalance failed",
			slog.String("wallet_id", rawID),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	s.cachePut(ctx, w)
	return w, nil
}

// ApplyOperation deposits to or withdraws from a wallet under optimistic
// locking, retrying lost version races up to maxRetries attempts.
func (s *WalletService) ApplyOperation(
	ctx context.Context,
	rawID string,
	opType models.OperationType,
	amount decimal.Decimal,
) (models.OperationResult, error) {
	walletID, err := models.ParseWalletID(rawID)
	if err != nil {
		s.logger.Warn("Operation rejected: malformed wallet id", slog.String("wallet_id", rawID))
		return models.OperationResult{}, ErrInvalidWallet
	}
	if !opType.Valid() {
		return models.OperationResult{}, ErrInvalidOperation
	}
	if !amount.IsPositive() || !models.IsMoney(amount) {
		return models.OperationResult{}, ErrInvalidAmount
	}

	start := time.Now()
	result, err := s.applyWithRetry(ctx, walletID, opType, amount)
	s.metrics.RecordOperation(string(opType), resultLabel(err), time.Since(start))
	return result, err
}

func (s *WalletService) applyWithRetry(
	ctx context.Context,
	walletID uuid.UUID,
	opType models.OperationType,
	amount decimal.Decimal,
) (models.OperationResult, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		res := s.attempt(ctx, walletID, opType, amount)
		switch res.state {
		case stateSucceeded:
			wallet := s.reload(ctx, res.wallet)
			s.cacheRefresh(ctx, wallet)
			return models.OperationResult{
				WalletID:      walletID,
				OperationType: opType,
				Amount:        amount,
				NewBalance:    res.wallet.Balance,
				Wallet:        wallet,
			}, nil
		case stateFailed:
			s.logFailure(walletID, opType, amount, res.err)
			return models.OperationResult{}, res.err
		case stateConflict:
			lastErr = ErrConcurrentModification
			s.metrics.RecordRetry("conflict")
			s.logger.Warn("Version conflict, retrying operation",
				slog.String("wallet_id", walletID.String()),
				slog.String("operation", string(opType)),
				slog.Int("attempt", attempt),
			)
		case stateRetryable:
			lastErr = operationFailed(res.err)
			s.metrics.RecordRetry("transient")
			s.logger.Warn("Transient store error, retrying operation",
				slog.String("wallet_id", walletID.String()),
				slog.String("operation", string(opType)),
				slog.Int("attempt", attempt),
				slog.Any("err", res.err),
			)
		}

		if attempt < s.maxRetries {
			if err := s.backoff(ctx, attempt); err != nil {
				return models.OperationResult{}, operationFailed(err)
			}
		}
	}

	if lastErr == nil {
		lastErr = ErrMaxRetriesExceeded
	}
	s.logger.Error("Operation failed after retries",
		slog.String("wallet_id", walletID.String()),
		slog.String("operation", string(opType)),
		slog.Any("amount", amount),
		slog.Int("attempts", s.maxRetries),
		slog.Any("err", lastErr),
	)
	return models.OperationResult{}, lastErr
}

type opState int

const (
	stateReading opState = iota
	stateValidating
	stateCommitting
	stateSucceeded
	stateConflict
	stateRetryable
	stateFailed
)

func (st opState) String() string {
	switch st {
	case stateReading:
		return "reading"
	case stateValidating:
		return "validating"
	case stateCommitting:
		return "committing"
	case stateSucceeded:
		return "succeeded"
	case stateConflict:
		return "conflict"
	case stateRetryable:
		return "retryable"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

type attemptResult struct {
	state  opState
	wallet models.Wallet
	err    error
}

// attempt runs one read-compute-commit cycle inside its own transaction and
// ends in Succeeded, Conflict, Retryable or Failed.
func (s *WalletService) attempt(
	ctx context.Context,
	walletID uuid.UUID,
	opType models.OperationType,
	amount decimal.Decimal,
) attemptResult {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return s.storeFailure(ctx, err)
	}
	defer func() {
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, repository.ErrTxClosed) {
			s.logger.Error("Failed to rollback transaction",
				slog.String("wallet_id", walletID.String()),
				slog.Any("err", err),
			)
		}
	}()

	var (
		current    models.Wallet
		newBalance decimal.Decimal
	)
	state := stateReading
	for {
		switch state {
		case stateReading:
			current, err = tx.Find(ctx, walletID)
			if errors.Is(err, ErrWalletNotFound) {
				return attemptResult{state: stateFailed, err: ErrWalletNotFound}
			}
			if err != nil {
				return s.storeFailure(ctx, err)
			}
			state = stateValidating

		case stateValidating:
			newBalance, err = nextBalance(current.Balance, opType, amount)
			if err != nil {
				return attemptResult{state: stateFailed, err: err}
			}
			state = stateCommitting

		case stateCommitting:
			rows, err := tx.ConditionalUpdate(ctx, walletID, current.Version, newBalance, current.Version+1)
			if err != nil {
				return s.storeFailure(ctx, err)
			}
			if rows == 0 {
				return attemptResult{state: stateConflict}
			}
			if err := tx.Commit(ctx); err != nil {
				return s.storeFailure(ctx, err)
			}
			committed := current
			committed.Balance = newBalance
			committed.Version = current.Version + 1
			committed.UpdatedAt = s.now()
			return attemptResult{state: stateSucceeded, wallet: committed}

		default:
			return attemptResult{state: stateFailed, err: ErrMaxRetriesExceeded}
		}
	}
}

func nextBalance(balance decimal.Decimal, opType models.OperationType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch opType {
	case models.OperationDeposit:
		return balance.Add(amount), nil
	case models.OperationWithdraw:
		if balance.LessThan(amount) {
			return decimal.Zero, &InsufficientFundsError{Balance: balance, Amount: amount}
		}
		return balance.Sub(amount), nil
	}
	return decimal.Zero, ErrInvalidOperation
}

func (s *WalletService) storeFailure(ctx context.Context, err error) attemptResult {
	if ctx.Err() == nil && isRetryableError(err) {
		return attemptResult{state: stateRetryable, err: err}
	}
	return attemptResult{state: stateFailed, err: operationFailed(err)}
}

// reload fetches the post-commit state. The committed snapshot is used when
// the read fails, since the write itself already succeeded.
func (s *WalletService) reload(ctx context.Context, committed models.Wallet) models.Wallet {
	w, err := s.store.Find(ctx, committed.ID)
	if err != nil {
		s.logger.Warn("Failed to re-read wallet after commit",
			slog.String("wallet_id", committed.ID.String()),
			slog.Any("err", err),
		)
		return committed
	}
	return w
}

func (s *WalletService) backoff(ctx context.Context, attempt int) error {
	delay := s.retryDelay << (attempt - 1)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WalletService) cachePut(ctx context.Context, w models.Wallet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, w); err != nil {
		s.logger.Warn("Failed to cache wallet",
			slog.String("wallet_id", w.ID.String()),
			slog.Any("err", err),
		)
	}
}

// cacheRefresh writes the post-commit snapshot and drops the entry if that fails.
func (s *WalletService) cacheRefresh(ctx context.Context, w models.Wallet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, w); err != nil {
		s.logger.Warn("Failed to refresh cached wallet, invalidating",
			slog.String("wallet_id", w.ID.String()),
			slog.Any("err", err),
		)
		if err := s.cache.Invalidate(ctx, w.ID); err != nil {
			s.logger.Error("Failed to invalidate cached wallet",
				slog.String("wallet_id", w.ID.String()),
				slog.Any("err", err),
			)
		}
	}
}

func (s *WalletService) logFailure(walletID uuid.UUID, opType models.OperationType, amount decimal.Decimal, err error) {
	var insufficient *InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		s.logger.Warn("Operation rejected: insufficient funds",
			slog.String("wallet_id", walletID.String()),
			slog.String("operation", string(opType)),
			slog.Any("amount", amount),
			slog.Any("balance", insufficient.Balance),
		)
	case errors.Is(err, ErrWalletNotFound):
		s.logger.Warn("Operation rejected: wallet not found",
			slog.String("wallet_id", walletID.String()),
			slog.String("operation", string(opType)),
		)
	default:
		s.logger.Error("Operation failed",
			slog.String("wallet_id", walletID.String()),
			slog.String("operation", string(opType)),
			slog.Any("amount", amount),
			slog.Any("err", err),
		)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrWalletNotFound):
		return "not_found"
	case errors.Is(err, ErrConcurrentModification):
		return "conflict"
	default:
		return "error"
	}
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return pgconn.SafeToRetry(err)
}
