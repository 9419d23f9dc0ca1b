package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceScale is the number of fractional digits stored for a balance.
const BalanceScale = 2

type OperationType string

const (
	OperationDeposit  OperationType = "DEPOSIT"
	OperationWithdraw OperationType = "WITHDRAW"
)

func (t OperationType) Valid() bool {
	return t == OperationDeposit || t == OperationWithdraw
}

type Wallet struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Version   int64           `db:"version" json:"version"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet returns a fresh wallet with a random id, zero balance and version 1.
func NewWallet(now time.Time) Wallet {
	return Wallet{
		ID:        uuid.New(),
		Balance:   decimal.Zero,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OperationResult is what a committed DEPOSIT or WITHDRAW reports back.
type OperationResult struct {
	WalletID      uuid.UUID
	OperationType OperationType
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	Wallet        Wallet
}

// ParseWalletID parses a textual wallet identifier.
func ParseWalletID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// IsMoney reports whether d is representable as a balance without rounding.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(BalanceScale))
}
