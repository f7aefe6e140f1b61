package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
)

type CancelEnrollmentUseCase struct {
	store    repository.Store
	counts   cache.CountCache
	notifier notify.Notifier
	now      func() time.Time
}

func NewCancelEnrollmentUseCase(store repository.Store, counts cache.CountCache, notifier notify.Notifier) *CancelEnrollmentUseCase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CancelEnrollmentUseCase{
		store:    store,
		counts:   counts,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute отменяет запись, по которой ещё не отправляли оплату.
func (uc *CancelEnrollmentUseCase) Execute(ctx context.Context, actor authz.Actor, enrollmentID uuid.UUID) (*entity.Enrollment, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var cancelled *entity.Enrollment
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		_, e, err := repository.LockEnrollment(ctx, repos, enrollmentID)
		if err != nil {
			return err
		}
		if err := authz.RequireAdminOrOwner(actor, e.StudentID); err != nil {
			return err
		}
		if err := e.Cancel(uc.now()); err != nil {
			return err
		}
		if err := repos.Enrollments().Update(ctx, e); err != nil {
			return err
		}
		cancelled = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.counts.Invalidate(ctx, cancelled.SeminarID)
	logger.Log.WithFields(map[string]interface{}{
		"enrollment_id": cancelled.ID,
		"seminar_id":    cancelled.SeminarID,
		"by":            actor.Email,
	}).Info("enrollment cancelled")
	uc.notifier.Notify(cancelled.StudentEmail, notify.EventEnrollmentCancelled, cancelled)
	return cancelled, nil
}
