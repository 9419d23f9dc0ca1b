package repository

import (
	"context"
	"errors"
	"log/slog"

	"wallet_api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWalletAlreadyExist = errors.New("wallet already exists")
	// ErrTxClosed is returned by Rollback after the transaction was committed or rolled back.
	ErrTxClosed = pgx.ErrTxClosed
)

const uniqueViolation = "23505"

const (
	selectWalletSQL = `SELECT id, balance, version, created_at, updated_at FROM wallets WHERE id = $1`
	insertWalletSQL = `
		INSERT INTO wallets (id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, balance, version, created_at, updated_at`
	conditionalUpdateSQL = `
		UPDATE wallets SET balance = $1, version = $2, updated_at = NOW()
		WHERE id = $3 AND version = $4`
)

// WalletTx is a single optimistic attempt against the store. The connection
// behind it is held until Commit or Rollback.
type WalletTx interface {
	Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error)
	ConditionalUpdate(ctx context.Context, walletID uuid.UUID, expectedVersion int64, newBalance decimal.Decimal, newVersion int64) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type WalletPGRepository struct {
	pool   Pool
	logger *slog.Logger
}

func NewWalletPGRepository(pool Pool, logger *slog.Logger) *WalletPGRepository {
	return &WalletPGRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *WalletPGRepository) Insert(ctx context.Context, w models.Wallet) (models.Wallet, error) {
	created, err := scanWallet(r.pool.QueryRow(ctx, insertWalletSQL,
		w.ID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Wallet{}, ErrWalletAlreadyExist
		}
		r.logger.Error("Failed to create wallet",
			slog.String("wallet_id", w.ID.String()),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	return created, nil
}

func (r *WalletPGRepository) Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	return findWallet(ctx, r.pool, r.logger, walletID)
}

func (r *WalletPGRepository) ConditionalUpdate(
	ctx context.Context,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (int64, error) {
	return conditionalUpdate(ctx, r.pool, r.logger, walletID, expectedVersion, newBalance, newVersion)
}

func (r *WalletPGRepository) Begin(ctx context.Context) (WalletTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", slog.Any("err", err))
		return nil, err
	}
	return &pgWalletTx{tx: tx, logger: r.logger}, nil
}

func (r *WalletPGRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *WalletPGRepository) Name() string {
	return "postgresql"
}

type pgWalletTx struct {
	tx     pgx.Tx
	logger *slog.Logger
}

func (t *pgWalletTx) Find(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	return findWallet(ctx, t.tx, t.logger, walletID)
}

func (t *pgWalletTx) ConditionalUpdate(
	ctx context.Context,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (int64, error) {
	return conditionalUpdate(ctx, t.tx, t.logger, walletID, expectedVersion, newBalance, newVersion)
}

func (t *pgWalletTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		t.logger.Error("Failed to commit transaction", slog.Any("err", err))
		return err
	}
	return nil
}

func (t *pgWalletTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func findWallet(ctx context.Context, q querier, logger *slog.Logger, walletID uuid.UUID) (models.Wallet, error) {
	w, err := scanWallet(q.QueryRow(ctx, selectWalletSQL, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		logger.Error("Failed to select wallet",
			slog.String("wallet_id", walletID.String()),
			slog.Any("err", err),
		)
		return models.Wallet{}, err
	}
	return w, nil
}

func conditionalUpdate(
	ctx context.Context,
	q querier,
	logger *slog.Logger,
	walletID uuid.UUID,
	expectedVersion int64,
	newBalance decimal.Decimal,
	newVersion int64,
) (int64, error) {
	tag, err := q.Exec(ctx, conditionalUpdateSQL, newBalance, newVersion, walletID, expectedVersion)
	if err != nil {
		logger.Error("Failed to update wallet balance",
			slog.String("wallet_id", walletID.String()),
			slog.Int64("expected_version", expectedVersion),
			slog.Any("err", err),
		)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.Balance, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}
