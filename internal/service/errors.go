package service

import (
	"errors"
	"fmt"

	"wallet_api/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidWallet          = errors.New("invalid wallet id")
	ErrWalletNotFound         = repository.ErrWalletNotFound
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("operation failed due to concurrent modification")
	ErrOperationFailed        = errors.New("operation failed")
	ErrMaxRetriesExceeded     = errors.New("max retries exceeded")
	ErrInvalidAmount          = errors.New("amount must be positive with at most two decimal places")
	ErrInvalidOperation       = errors.New("invalid operation type")
)

// InsufficientFundsError carries the numbers behind a rejected withdrawal.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s",
		e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

func operationFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrOperationFailed, cause)
}
