package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// DefaultRejectionReason подставляется, если администратор не указал причину.
const DefaultRejectionReason = "Rejected by admin"

type Enrollment struct {
	ID              uuid.UUID                    `db:"id" json:"id"`
	SeminarID       uuid.UUID                    `db:"seminar_id" json:"seminar_id"`
	StudentID       uuid.UUID                    `db:"student_id" json:"student_id"`
	StudentEmail    string                       `db:"student_email" json:"student_email"`
	InvitedByEmail  *string                      `db:"invited_by_email" json:"invited_by_email,omitempty"`
	Status          valueobject.EnrollmentStatus `db:"status" json:"status"`
	PaymentStatus   valueobject.PaymentStatus    `db:"payment_status" json:"payment_status"`
	FinalPrice      decimal.NullDecimal          `db:"final_price" json:"final_price"`
	AmountPaid      decimal.NullDecimal          `db:"amount_paid" json:"amount_paid"`
	RejectionReason *string                      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time                   `db:"submitted_at" json:"submitted_at,omitempty"`
	PaidAt          *time.Time                   `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time                    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time                    `db:"updated_at" json:"updated_at"`
}

func NewEnrollment(seminarID, studentID uuid.UUID, studentEmail string, invitedBy *string) *Enrollment {
	now := time.Now().UTC()
	return &Enrollment{
		ID:             uuid.New(),
		SeminarID:      seminarID,
		StudentID:      studentID,
		StudentEmail:   studentEmail,
		InvitedByEmail: invitedBy,
		Status:         valueobject.EnrollmentStatusEnrolled,
		PaymentStatus:  valueobject.PaymentStatusUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (e *Enrollment) IsActive() bool {
	return e.Status.IsActive()
}

func (e *Enrollment) IsOwnedBy(userID uuid.UUID) bool {
	return e.StudentID == userID
}

// SubmitPayment фиксирует цену и отправляет оплату на проверку.
func (e *Enrollment) SubmitPayment(price decimal.Decimal, at time.Time) error {
	if e.PaymentStatus.AwaitingApproval() {
		return apperror.ErrAlreadySubmitted
	}
	if !e.PaymentStatus.CanTransitionTo(valueobject.PaymentStatusPendingPayment) {
		return apperror.ErrNotPayable
	}
	e.PaymentStatus = valueobject.PaymentStatusPendingPayment
	e.FinalPrice = decimal.NewNullDecimal(valueobject.RoundMoney(price))
	e.RejectionReason = nil
	e.SubmittedAt = &at
	e.UpdatedAt = at
	return nil
}

// Approve отмечает оплату подтверждённой по зафиксированной цене.
func (e *Enrollment) Approve(at time.Time) error {
	if !e.PaymentStatus.AwaitingApproval() {
		return apperror.New(apperror.ErrCodeConflict, "оплата не ожидает подтверждения")
	}
	if !e.FinalPrice.Valid {
		return apperror.New(apperror.ErrCodeConsistency, "у оплаты нет зафиксированной цены")
	}
	e.PaymentStatus = valueobject.PaymentStatusPaid
	e.AmountPaid = e.FinalPrice
	e.PaidAt = &at
	e.UpdatedAt = at
	return nil
}

// Reject возвращает запись в оплачиваемое состояние.
func (e *Enrollment) Reject(reason string, at time.Time) error {
	if !e.PaymentStatus.AwaitingApproval() {
		return apperror.New(apperror.ErrCodeConflict, "оплата не ожидает подтверждения")
	}
	if reason == "" {
		reason = DefaultRejectionReason
	}
	e.PaymentStatus = valueobject.PaymentStatusRejected
	e.RejectionReason = &reason
	e.UpdatedAt = at
	return nil
}

// Cancel отменяет запись, пока по ней не было оплаты.
func (e *Enrollment) Cancel(at time.Time) error {
	if !e.IsActive() {
		return apperror.New(apperror.ErrCodeConflict, "запись уже отменена")
	}
	if e.PaymentStatus.AwaitingApproval() || e.PaymentStatus == valueobject.PaymentStatusPaid {
		return apperror.New(apperror.ErrCodeConflict, "нельзя отменить запись с отправленной оплатой")
	}
	e.Status = valueobject.EnrollmentStatusCancelled
	e.UpdatedAt = at
	return nil
}
