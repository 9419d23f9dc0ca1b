package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wallet_api/internal/models"
	"wallet_api/internal/repository"
	"wallet_api/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFind(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w := models.NewWallet(time.Now().UTC())
	created, err := repo.Insert(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, w.ID, created.ID)
	assert.True(t, created.Balance.IsZero())
	assert.Equal(t, int64(1), created.Version)

	found, err := repo.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)
	assert.True(t, found.Balance.IsZero())
	assert.Equal(t, int64(1), found.Version)
}

func TestInsert_Duplicate(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w := models.NewWallet(time.Now().UTC())
	_, err := repo.Insert(ctx, w)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, w)
	assert.ErrorIs(t, err, repository.ErrWalletAlreadyExist)
}

func TestFind_NotFound(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)

	_, err := repo.Find(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrWalletNotFound)
}

func TestConditionalUpdate_VersionGate(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w, err := repo.Insert(ctx, models.NewWallet(time.Now().UTC()))
	require.NoError(t, err)

	rows, err := repo.ConditionalUpdate(ctx, w.ID, 1, decimal.RequireFromString("100.50"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// stale version
	rows, err = repo.ConditionalUpdate(ctx, w.ID, 1, decimal.RequireFromString("999"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = repo.ConditionalUpdate(ctx, uuid.New(), 1, decimal.NewFromInt(1), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, int64(2), found.Version)
}

func TestConditionalUpdate_NegativeBalanceRejected(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w, err := repo.Insert(ctx, models.NewWallet(time.Now().UTC()))
	require.NoError(t, err)

	_, err = repo.ConditionalUpdate(ctx, w.ID, 1, decimal.NewFromInt(-1), 2)
	assert.Error(t, err)
}

func TestTx_CommitAndRollback(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w, err := repo.Insert(ctx, models.NewWallet(time.Now().UTC()))
	require.NoError(t, err)

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	rows, err := tx.ConditionalUpdate(ctx, w.ID, 1, decimal.NewFromInt(50), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	require.NoError(t, tx.Rollback(ctx))

	found, err := repo.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero())
	assert.Equal(t, int64(1), found.Version)

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	current, err := tx.Find(ctx, w.ID)
	require.NoError(t, err)
	rows, err = tx.ConditionalUpdate(ctx, w.ID, current.Version, decimal.NewFromInt(75), current.Version+1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	require.NoError(t, tx.Commit(ctx))
	assert.ErrorIs(t, tx.Rollback(ctx), repository.ErrTxClosed)

	found, err = repo.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, int64(2), found.Version)
}

func TestConditionalUpdate_ConcurrentWritersOneWins(t *testing.T) {
	pool, teardown := testutil.SetupTestDB(t)
	defer teardown()
	repo := repository.NewWalletPGRepository(pool, testutil.DiscardLogger)
	ctx := context.Background()

	w, err := repo.Insert(ctx, models.NewWallet(time.Now().UTC()))
	require.NoError(t, err)

	const writers = 20
	var (
		wg   sync.WaitGroup
		wins atomic.Int64
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := repo.ConditionalUpdate(ctx, w.ID, 1, decimal.NewFromInt(int64(i+1)), 2)
			assert.NoError(t, err)
			wins.Add(rows)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
	found, err := repo.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Version)
}
