package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы владельцев кошельков
const (
	UserTypeProfessor = "professor"
	UserTypeStudent   = "student"
)

// Типы транзакций
const (
	TransactionTypeSeminarIncome       = "seminar_income"
	TransactionTypeReferralBonus       = "referral_bonus"
	TransactionTypePlatformFee         = "platform_fee"
	TransactionTypeWithdrawal          = "withdrawal"
	TransactionTypeSurplusDistribution = "surplus_distribution"
)

// Статусы транзакций
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

// ValidCreditType типы, которыми можно зачислять средства на кошелёк.
func ValidCreditType(txType string) bool {
	switch txType {
	case TransactionTypeSeminarIncome, TransactionTypeReferralBonus, TransactionTypeSurplusDistribution:
		return true
	}
	return false
}

// ValidUserType проверяет тип владельца кошелька.
func ValidUserType(userType string) bool {
	return userType == UserTypeProfessor || userType == UserTypeStudent
}

// Wallet материализованная сводка по журналу транзакций пользователя.
type Wallet struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	UserEmail      string          `db:"user_email" json:"user_email"`
	UserType       string          `db:"user_type" json:"user_type"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	PendingBalance decimal.Decimal `db:"pending_balance" json:"pending_balance"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet создаёт пустой кошелёк.
func NewWallet(email, userType string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		UserEmail: email,
		UserType:  userType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transaction запись журнала. Сумма всегда положительная, направление задаёт тип.
type Transaction struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	WalletID     *uuid.UUID      `db:"wallet_id" json:"wallet_id,omitempty"`
	UserEmail    string          `db:"user_email" json:"user_email"`
	Type         string          `db:"type" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	SeminarID    *uuid.UUID      `db:"seminar_id" json:"seminar_id,omitempty"`
	EnrollmentID *uuid.UUID      `db:"enrollment_id" json:"enrollment_id,omitempty"`
	Description  *string         `db:"description" json:"description,omitempty"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// BalanceSummary ответ get_balance_summary.
type BalanceSummary struct {
	Balance        decimal.Decimal `json:"balance"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
}

// Add добавляет значения кошелька к сводке.
func (s BalanceSummary) Add(w *Wallet) BalanceSummary {
	return BalanceSummary{
		Balance:        s.Balance.Add(w.Balance),
		PendingBalance: s.PendingBalance.Add(w.PendingBalance),
		TotalEarned:    s.TotalEarned.Add(w.TotalEarned),
		TotalWithdrawn: s.TotalWithdrawn.Add(w.TotalWithdrawn),
	}
}
