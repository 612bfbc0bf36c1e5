package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TxTransfer    = "transfer"
	TxDeposit     = "deposit"
	TxWithdrawal  = "withdrawal"
	TxBillPayment = "bill_payment"
)

// Transaction statuses.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

// Transaction is a ledger entry: a credit or debit against a user's balance.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Currency    string          `json:"currency"`
	RecipientID string          `json:"recipient_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ValidTxStatus reports whether s is a known transaction status.
func ValidTxStatus(s string) bool {
	switch s {
	case TxPending, TxCompleted, TxFailed:
		return true
	}
	return false
}
