package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// Значения по умолчанию для новых семинаров.
const (
	DefaultTargetStudents = 15
	DefaultPaymentDueDays = 7
)

type Seminar struct {
	ID                      uuid.UUID                 `db:"id" json:"id"`
	ProfessorID             uuid.UUID                 `db:"professor_id" json:"professor_id"`
	ProfessorEmail          string                    `db:"professor_email" json:"professor_email"`
	Title                   string                    `db:"title" json:"title"`
	Status                  valueobject.SeminarStatus `db:"status" json:"status"`
	TargetIncome            decimal.Decimal           `db:"target_income" json:"target_income"`
	TargetStudents          int                       `db:"target_students" json:"target_students"`
	MaxStudents             *int                      `db:"max_students" json:"max_students,omitempty"`
	Price                   decimal.NullDecimal       `db:"price" json:"price"`
	PlatformFeePercent      decimal.Decimal           `db:"platform_fee_percent" json:"platform_fee_percent"`
	ProfessorBonusPercent   decimal.Decimal           `db:"professor_bonus_percent" json:"professor_bonus_percent"`
	PaymentDueDays          int                       `db:"payment_due_days" json:"payment_due_days"`
	StartDate               time.Time                 `db:"start_date" json:"start_date"`
	PaymentWindowNotifiedAt *time.Time                `db:"payment_window_notified_at" json:"-"`
	CreatedAt               time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time                 `db:"updated_at" json:"updated_at"`
}

type NewSeminarParams struct {
	ProfessorID           uuid.UUID
	ProfessorEmail        string
	Title                 string
	TargetIncome          decimal.Decimal
	TargetStudents        int
	MaxStudents           *int
	Price                 decimal.NullDecimal
	PlatformFeePercent    decimal.Decimal
	ProfessorBonusPercent decimal.Decimal
	PaymentDueDays        int
	StartDate             time.Time
}

func NewSeminar(p NewSeminarParams) (*Seminar, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название семинара обязательно")
	}
	if p.TargetIncome.IsNegative() {
		return nil, apperror.New(apperror.ErrCodeValidation, "целевой доход не может быть отрицательным")
	}
	if p.TargetStudents == 0 {
		p.TargetStudents = DefaultTargetStudents
	}
	if p.TargetStudents < 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "целевое число студентов должно быть не меньше 1")
	}
	if p.MaxStudents != nil && *p.MaxStudents < 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "вместимость должна быть не меньше 1")
	}
	if p.PaymentDueDays < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок оплаты не может быть отрицательным")
	}
	if p.Price.Valid && p.Price.Decimal.IsNegative() {
		return nil, apperror.New(apperror.ErrCodeValidation, "цена не может быть отрицательной")
	}
	if _, err := valueobject.NewPercent(p.PlatformFeePercent); err != nil {
		return nil, err
	}
	if _, err := valueobject.NewPercent(p.ProfessorBonusPercent); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Seminar{
		ID:                    uuid.New(),
		ProfessorID:           p.ProfessorID,
		ProfessorEmail:        p.ProfessorEmail,
		Title:                 strings.TrimSpace(p.Title),
		Status:                valueobject.SeminarStatusPublished,
		TargetIncome:          valueobject.RoundMoney(p.TargetIncome),
		TargetStudents:        p.TargetStudents,
		MaxStudents:           p.MaxStudents,
		Price:                 p.Price,
		PlatformFeePercent:    p.PlatformFeePercent,
		ProfessorBonusPercent: p.ProfessorBonusPercent,
		PaymentDueDays:        p.PaymentDueDays,
		StartDate:             p.StartDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// PaymentOpensAt момент, когда оплата открывается по дате.
func (s *Seminar) PaymentOpensAt() time.Time {
	return s.StartDate.AddDate(0, 0, -s.PaymentDueDays)
}

// FallbackPrice фиксированная цена, если целевой доход не задан.
func (s *Seminar) FallbackPrice() decimal.Decimal {
	if s.Price.Valid {
		return s.Price.Decimal
	}
	return decimal.Zero
}

func (s *Seminar) IsOwnedBy(userID uuid.UUID) bool {
	return s.ProfessorID == userID
}
