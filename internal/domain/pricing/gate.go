package pricing

import (
	"time"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// CanCreateEnrollment проверяет вместимость семинара.
func CanCreateEnrollment(s *entity.Seminar, currentCount int) error {
	if s.MaxStudents != nil && currentCount >= *s.MaxStudents {
		return apperror.ErrSeminarFull
	}
	return nil
}

// PaymentWindowOpen true, если оплату можно принять по числу записей или по дате.
func PaymentWindowOpen(s *entity.Seminar, currentCount int, now time.Time) bool {
	if currentCount >= s.TargetStudents {
		return true
	}
	return !now.Before(s.PaymentOpensAt())
}

// IsPayableNow решает, можно ли сейчас принять оплату по записи.
func IsPayableNow(s *entity.Seminar, e *entity.Enrollment, currentCount int, now time.Time) bool {
	return e.PaymentStatus.CanSubmit() && PaymentWindowOpen(s, currentCount, now)
}

// Причины, по которым оплата недоступна.
const (
	ReasonPayable          = ""
	ReasonAlreadySubmitted = "already_submitted"
	ReasonPaid             = "paid"
	ReasonCancelled        = "cancelled"
	ReasonWindowClosed     = "window_closed"
)

// CheckPayable возвращает типизированную ошибку и причину отказа.
func CheckPayable(s *entity.Seminar, e *entity.Enrollment, currentCount int, now time.Time) (string, error) {
	switch {
	case e.PaymentStatus.AwaitingApproval():
		return ReasonAlreadySubmitted, apperror.ErrAlreadySubmitted
	case !e.PaymentStatus.CanSubmit():
		return ReasonPaid, apperror.ErrNotPayable
	case !e.IsActive():
		return ReasonCancelled, apperror.ErrNotPayable
	case !IsPayableNow(s, e, currentCount, now):
		return ReasonWindowClosed, apperror.ErrNotPayable
	}
	return ReasonPayable, nil
}
