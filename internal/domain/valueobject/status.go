package valueobject

import "github.com/okalab/okalab-backend/internal/pkg/apperror"

type SeminarStatus string

const (
	SeminarStatusDraft      SeminarStatus = "draft"
	SeminarStatusPublished  SeminarStatus = "published"
	SeminarStatusInProgress SeminarStatus = "in_progress"
	SeminarStatusCompleted  SeminarStatus = "completed"
	SeminarStatusCancelled  SeminarStatus = "cancelled"
)

func (s SeminarStatus) IsValid() bool {
	switch s {
	case SeminarStatusDraft, SeminarStatusPublished, SeminarStatusInProgress, SeminarStatusCompleted, SeminarStatusCancelled:
		return true
	}
	return false
}

// AcceptsEnrollments сообщает, можно ли записаться на семинар в этом статусе.
func (s SeminarStatus) AcceptsEnrollments() bool {
	return s == SeminarStatusPublished || s == SeminarStatusInProgress
}

func NewSeminarStatus(status string) (SeminarStatus, error) {
	s := SeminarStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус семинара")
	}
	return s, nil
}

// EnrollmentStatus отображаемое состояние записи. На оплату не влияет.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) IsActive() bool {
	return s != EnrollmentStatusCancelled
}

// PaymentStatus единственный источник истины для оплаты записи.
type PaymentStatus string

const (
	PaymentStatusUnpaid         PaymentStatus = "unpaid"
	PaymentStatusPendingPayment PaymentStatus = "pending_payment"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusRejected       PaymentStatus = "rejected"

	// PaymentStatusLegacyPending встречается в старых записях, эквивалентен pending_payment.
	PaymentStatusLegacyPending PaymentStatus = "pending"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPendingPayment, PaymentStatusPaid, PaymentStatusRejected, PaymentStatusLegacyPending:
		return true
	}
	return false
}

// AwaitingApproval true, если оплата ждёт решения администратора.
func (s PaymentStatus) AwaitingApproval() bool {
	return s == PaymentStatusPendingPayment || s == PaymentStatusLegacyPending
}

// CanSubmit true, если студент может отправить оплату.
func (s PaymentStatus) CanSubmit() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusRejected
}

func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusUnpaid:         {PaymentStatusPendingPayment},
		PaymentStatusPendingPayment: {PaymentStatusPaid, PaymentStatusRejected},
		PaymentStatusLegacyPending:  {PaymentStatusPaid, PaymentStatusRejected},
		PaymentStatusRejected:       {PaymentStatusPendingPayment},
		PaymentStatusPaid:           {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// PayableStatuses статусы, из которых разрешена отправка оплаты.
func PayableStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusUnpaid, PaymentStatusRejected}
}
