package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

type WithdrawalRequest struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserEmail     string          `db:"user_email" json:"user_email"`
	UserType      string          `db:"user_type" json:"user_type"`
	WalletID      uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	TransactionID uuid.UUID       `db:"transaction_id" json:"transaction_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Method        string          `db:"method" json:"method"`
	Destination   string          `db:"destination" json:"destination"`
	Status        string          `db:"status" json:"status"`
	Reason        *string         `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt   *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
