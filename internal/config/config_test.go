package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Microsecond, cfg.RetryBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WALLET_MAX_RETRIES", "5")
	t.Setenv("WALLET_RETRY_BASE_DELAY", "2ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Millisecond, cfg.RetryBaseDelay)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "postgres://postgres:secret@db:5432/wallets?sslmode=disable", cfg.DB.URL())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("WALLET_MAX_RETRIES", "0")
	t.Setenv("WALLET_RETRY_BASE_DELAY", "-1ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "0s")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "WALLET_MAX_RETRIES")
	assert.Contains(t, err.Error(), "WALLET_RETRY_BASE_DELAY")
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoadConfig_ParseError(t *testing.T) {
	t.Setenv("WALLET_MAX_RETRIES", "three")

	_, err := LoadConfig()
	assert.Error(t, err)
}
