package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeminarSettlement накопительные итоги расчётов по семинару.
type SeminarSettlement struct {
	SeminarID          uuid.UUID       `db:"seminar_id" json:"seminar_id"`
	BaseIncomePosted   bool            `db:"base_income_posted" json:"base_income_posted"`
	SurplusDistributed decimal.Decimal `db:"surplus_distributed" json:"surplus_distributed"`
	TotalCollected     decimal.Decimal `db:"total_collected" json:"total_collected"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// PlatformSettings единственная строка с id = 1.
type PlatformSettings struct {
	ID                      int             `db:"id" json:"-"`
	PlatformFeePercent      decimal.Decimal `db:"platform_fee_percent" json:"platform_fee_percent"`
	SurplusProfessorPercent decimal.Decimal `db:"surplus_professor_percent" json:"surplus_professor_percent"`
	UpdatedAt               time.Time       `db:"updated_at" json:"updated_at"`
}
