package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationRequest struct {
	OperationType OperationType   `json:"operation_type" binding:"required,oneof=DEPOSIT WITHDRAW"`
	Amount        decimal.Decimal `json:"amount" binding:"required,money"`
}

type WalletResponse struct {
	ID        string    `json:"id"`
	Balance   string    `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OperationResponse struct {
	WalletID      string        `json:"wallet_id"`
	OperationType OperationType `json:"operation_type"`
	Amount        string        `json:"amount"`
	NewBalance    string        `json:"new_balance"`
	Success       bool          `json:"success"`
}

type ErrorResponse struct {
	Detail          string `json:"detail"`
	CurrentBalance  string `json:"current_balance,omitempty"`
	RequestedAmount string `json:"requested_amount,omitempty"`
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(BalanceScale)
}

func NewWalletResponse(w Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		Balance:   FormatMoney(w.Balance),
		Version:   w.Version,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func NewOperationResponse(r OperationResult) OperationResponse {
	return OperationResponse{
		WalletID:      r.WalletID.String(),
		OperationType: r.OperationType,
		Amount:        FormatMoney(r.Amount),
		NewBalance:    FormatMoney(r.NewBalance),
		Success:       true,
	}
}
