package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wallet_api/internal/models"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// putIfNewer stores the snapshot only when it carries a higher version than
// the cached one, so a late writer never replaces fresher state.
var putIfNewer = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// WalletCache keeps wallet snapshots in Redis hashes keyed by wallet id.
type WalletCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewWalletCache(client *goredis.Client, ttl time.Duration) *WalletCache {
	return &WalletCache{
		client: client,
		prefix: "wallet:",
		ttl:    ttl,
	}
}

// Get returns the cached wallet and whether it was present.
func (c *WalletCache) Get(ctx context.Context, walletID uuid.UUID) (models.Wallet, bool, error) {
	data, err := c.client.HGet(ctx, c.key(walletID), "data").Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return models.Wallet{}, false, nil
		}
		return models.Wallet{}, false, fmt.Errorf("redis wallet get: %w", err)
	}
	var w models.Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Wallet{}, false, fmt.Errorf("decode cached wallet: %w", err)
	}
	return w, true, nil
}

// Put caches w unless a snapshot with the same or a newer version is already there.
func (c *WalletCache) Put(ctx context.Context, w models.Wallet) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wallet: %w", err)
	}
	err = putIfNewer.Run(ctx, c.client,
		[]string{c.key(w.ID)},
		strconv.FormatInt(w.Version, 10), data, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis wallet put: %w", err)
	}
	return nil
}

func (c *WalletCache) Invalidate(ctx context.Context, walletID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(walletID)).Err(); err != nil {
		return fmt.Errorf("redis wallet invalidate: %w", err)
	}
	return nil
}

func (c *WalletCache) key(walletID uuid.UUID) string {
	return c.prefix + walletID.String()
}
