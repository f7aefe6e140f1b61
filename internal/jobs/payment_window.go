// Package jobs фоновые задачи по расписанию.
package jobs

import (
	"context"
	"time"

	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
)

// PaymentWindowNotice данные события payment_window_opened.
type PaymentWindowNotice struct {
	SeminarID    string `json:"seminar_id"`
	EnrollmentID string `json:"enrollment_id"`
	Title        string `json:"title"`
	Price        string `json:"price"`
}

// PaymentWindowJob напоминает студентам, что по семинару открылась оплата.
// Каждый семинар обрабатывается один раз.
type PaymentWindowJob struct {
	store    repository.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewPaymentWindowJob(store repository.Store, notifier notify.Notifier) *PaymentWindowJob {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PaymentWindowJob{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run возвращает число семинаров, по которым ушли напоминания.
func (j *PaymentWindowJob) Run(ctx context.Context) (int, error) {
	seminars, err := j.store.Seminars().ListAwaitingPaymentWindow(ctx)
	if err != nil {
		return 0, err
	}

	now := j.now()
	processed := 0
	for _, s := range seminars {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		count, err := j.store.Enrollments().CountActive(ctx, s.ID)
		if err != nil {
			return processed, err
		}
		if !pricing.PaymentWindowOpen(s, count, now) {
			continue
		}

		pending, err := j.store.Enrollments().ListAwaitingPayment(ctx, s.ID)
		if err != nil {
			return processed, err
		}
		// Штамп до рассылки: напоминание уходит не больше одного раза.
		if err := j.store.Seminars().MarkPaymentWindowNotified(ctx, s.ID, now); err != nil {
			return processed, err
		}

		price := pricing.QuoteCurrentPrice(pricing.InputFor(s, count)).StringFixed(2)
		for _, e := range pending {
			j.notifier.Notify(e.StudentEmail, notify.EventPaymentWindowOpened, PaymentWindowNotice{
				SeminarID:    s.ID.String(),
				EnrollmentID: e.ID.String(),
				Title:        s.Title,
				Price:        price,
			})
		}
		processed++

		logger.Log.WithFields(map[string]interface{}{
			"seminar_id": s.ID,
			"notified":   len(pending),
		}).Info("payment window opened")
	}
	return processed, nil
}
