// Package payment отправка оплаты студентом и её проверка администратором.
package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
)

type SubmitPaymentUseCase struct {
	store    repository.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewSubmitPaymentUseCase(store repository.Store, notifier notify.Notifier) *SubmitPaymentUseCase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &SubmitPaymentUseCase{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute фиксирует текущую цену в final_price и переводит запись в pending_payment.
// Дальнейшие записи на семинар цену этой оплаты не меняют.
func (uc *SubmitPaymentUseCase) Execute(ctx context.Context, actor authz.Actor, enrollmentID uuid.UUID) (*entity.Enrollment, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var submitted *entity.Enrollment
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		seminar, e, err := repository.LockEnrollment(ctx, repos, enrollmentID)
		if err != nil {
			return err
		}
		if err := authz.RequireOwnership(actor, e.StudentID); err != nil {
			return err
		}

		count, err := repos.Enrollments().CountActive(ctx, seminar.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		if _, err := pricing.CheckPayable(seminar, e, count, now); err != nil {
			return err
		}

		price := pricing.QuoteCurrentPrice(pricing.InputFor(seminar, count))
		if err := e.SubmitPayment(price, now); err != nil {
			return err
		}
		ok, err := repos.Enrollments().MarkPendingPayment(ctx, e)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrAlreadySubmitted
		}
		submitted = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"enrollment_id": submitted.ID,
		"seminar_id":    submitted.SeminarID,
		"final_price":   submitted.FinalPrice.Decimal.StringFixed(2),
	}).Info("payment submitted")
	uc.notifier.Notify(submitted.StudentEmail, notify.EventPaymentSubmitted, submitted)
	return submitted, nil
}
