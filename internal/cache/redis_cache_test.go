package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"wallet_api/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestCache(t *testing.T, ttl time.Duration) (*WalletCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWalletCache(client, ttl), mr
}

func walletAt(id uuid.UUID, balance string, version int64) models.Wallet {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return models.Wallet{
		ID:        id,
		Balance:   decimal.RequireFromString(balance),
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWalletCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, ok, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletCache_PutGet(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	w := walletAt(uuid.New(), "150.25", 4)

	require.NoError(t, c.Put(ctx, w))
	assert.True(t, mr.Exists("wallet:"+w.ID.String()))

	got, ok, err := c.Get(ctx, w.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.ID, got.ID)
	assert.True(t, got.Balance.Equal(w.Balance))
	assert.Equal(t, int64(4), got.Version)
	assert.True(t, got.UpdatedAt.Equal(w.UpdatedAt))
}

func TestWalletCache_OlderVersionIgnored(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Put(ctx, walletAt(id, "300", 3)))
	require.NoError(t, c.Put(ctx, walletAt(id, "100", 2)))
	require.NoError(t, c.Put(ctx, walletAt(id, "200", 3)))

	got, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "300.00", got.Balance.StringFixed(2))

	require.NoError(t, c.Put(ctx, walletAt(id, "350", 4)))
	got, _, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, "350.00", got.Balance.StringFixed(2))
}

func TestWalletCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	w := walletAt(uuid.New(), "10", 2)

	require.NoError(t, c.Put(ctx, w))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	w := walletAt(uuid.New(), "10", 2)

	require.NoError(t, c.Put(ctx, w))
	require.NoError(t, c.Invalidate(ctx, w.ID))

	_, ok, err := c.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// a lower version may be written again after invalidation
	require.NoError(t, c.Put(ctx, walletAt(w.ID, "5", 1)))
	got, ok, err := c.Get(ctx, w.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Version)
}

func TestWalletCache_Unreachable(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), walletAt(uuid.New(), "1", 1)))
}

func TestNewClientAndHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, RedisOptions{Addr: mr.Addr()}, testLogger)
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(ctx))

	mr.Close()
	assert.Error(t, hc.Ping(ctx))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), RedisOptions{Addr: addr}, testLogger)
	assert.Error(t, err)
}
