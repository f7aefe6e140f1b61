package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
)

type Payability struct {
	EnrollmentID    uuid.UUID                 `json:"enrollment_id"`
	Payable         bool                      `json:"payable"`
	Reason          string                    `json:"reason,omitempty"`
	PaymentStatus   valueobject.PaymentStatus `json:"payment_status"`
	Price           decimal.Decimal           `json:"price"`
	EnrollmentCount int                       `json:"enrollment_count"`
	PaymentOpensAt  time.Time                 `json:"payment_opens_at"`
}

type PayabilityUseCase struct {
	store repository.Store
	now   func() time.Time
}

func NewPayabilityUseCase(store repository.Store) *PayabilityUseCase {
	return &PayabilityUseCase{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Execute показывает, можно ли сейчас оплатить запись и по какой цене.
// Для уже отправленной оплаты возвращается зафиксированная цена.
func (uc *PayabilityUseCase) Execute(ctx context.Context, actor authz.Actor, enrollmentID uuid.UUID) (*Payability, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	e, err := uc.store.Enrollments().FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAdminOrOwner(actor, e.StudentID); err != nil {
		return nil, err
	}
	seminar, err := uc.store.Seminars().FindByID(ctx, e.SeminarID)
	if err != nil {
		return nil, err
	}
	count, err := uc.store.Enrollments().CountActive(ctx, seminar.ID)
	if err != nil {
		return nil, err
	}

	reason, _ := pricing.CheckPayable(seminar, e, count, uc.now())
	price := pricing.QuoteCurrentPrice(pricing.InputFor(seminar, count))
	if e.FinalPrice.Valid && !e.PaymentStatus.CanSubmit() {
		price = e.FinalPrice.Decimal
	}

	return &Payability{
		EnrollmentID:    e.ID,
		Payable:         reason == pricing.ReasonPayable,
		Reason:          reason,
		PaymentStatus:   e.PaymentStatus,
		Price:           price,
		EnrollmentCount: count,
		PaymentOpensAt:  seminar.PaymentOpensAt(),
	}, nil
}
