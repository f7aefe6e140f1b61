package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSeminarRequest тело POST /api/seminars. Суммы принимаются строкой или числом.
type CreateSeminarRequest struct {
	Title                 string           `json:"title" binding:"required"`
	TargetIncome          decimal.Decimal  `json:"target_income"`
	TargetStudents        *int             `json:"target_students"`
	MaxStudents           *int             `json:"max_students"`
	Price                 *decimal.Decimal `json:"price"`
	PlatformFeePercent    *decimal.Decimal `json:"platform_fee_percent"`
	ProfessorBonusPercent *decimal.Decimal `json:"professor_bonus_percent"`
	PaymentDueDays        *int             `json:"payment_due_days"`
	StartDate             time.Time        `json:"start_date" binding:"required"`
}

// EnrollRequest тело POST /api/seminars/:id/enrollments.
type EnrollRequest struct {
	ReferralCode string `json:"referral_code"`
}

// RejectRequest тело запросов на отклонение оплаты или вывода.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// WithdrawalRequest тело POST /api/withdrawals.
type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	UserType    string          `json:"user_type" binding:"required"`
	Method      string          `json:"method" binding:"required"`
	Destination string          `json:"destination" binding:"required"`
}

// UpdateSettingsRequest тело PUT /api/admin/settings.
type UpdateSettingsRequest struct {
	PlatformFeePercent      decimal.Decimal `json:"platform_fee_percent"`
	SurplusProfessorPercent decimal.Decimal `json:"surplus_professor_percent"`
}

// CreditRequest тело POST /api/admin/wallets/credit, ручное начисление.
type CreditRequest struct {
	Email       string          `json:"email" binding:"required"`
	UserType    string          `json:"user_type" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	SeminarID   *uuid.UUID      `json:"seminar_id"`
	Description string          `json:"description"`
}
