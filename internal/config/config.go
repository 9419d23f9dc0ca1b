package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"postgres"`

	DB    DBConfig
	Redis RedisConfig

	MaxRetries     int           `env:"WALLET_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"WALLET_RETRY_BASE_DELAY" envDefault:"10us"`
}

type DBConfig struct {
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_NAME" envDefault:"wallets"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns    int    `env:"DB_MAX_CONNS" envDefault:"8"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// URL returns the PostgreSQL connection string.
func (d DBConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig configures the balance cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load("config.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.StoreDriver != StoreDriverPostgres && c.StoreDriver != StoreDriverMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q",
			StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("WALLET_MAX_RETRIES must be at least 1, got %d", c.MaxRetries))
	}
	if c.RetryBaseDelay < 0 {
		errs = append(errs, errors.New("WALLET_RETRY_BASE_DELAY must not be negative"))
	}
	if c.DB.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DB.MaxConns))
	}
	if c.Redis.Enabled() && c.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive when REDIS_ADDR is set"))
	}
	return errors.Join(errs...)
}
