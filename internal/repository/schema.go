package repository

import (
	"context"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY,
		balance NUMERIC(15, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

// Migrate creates the wallets table if it does not exist yet.
func (r *WalletPGRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate wallets table: %w", err)
	}
	r.logger.Info("Wallets table is ready")
	return nil
}
