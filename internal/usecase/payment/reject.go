package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
)

type RejectPaymentUseCase struct {
	store    repository.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewRejectPaymentUseCase(store repository.Store, notifier notify.Notifier) *RejectPaymentUseCase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &RejectPaymentUseCase{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute отклоняет оплату. Журнал не меняется, студент может отправить оплату снова.
func (uc *RejectPaymentUseCase) Execute(ctx context.Context, actor authz.Actor, enrollmentID uuid.UUID, reason string) (*entity.Enrollment, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}

	var rejected *entity.Enrollment
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		_, e, err := repository.LockEnrollment(ctx, repos, enrollmentID)
		if err != nil {
			return err
		}
		if err := e.Reject(strings.TrimSpace(reason), uc.now()); err != nil {
			return err
		}
		if err := repos.Enrollments().Update(ctx, e); err != nil {
			return err
		}
		rejected = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"enrollment_id": rejected.ID,
		"reason":        *rejected.RejectionReason,
		"admin":         actor.Email,
	}).Info("payment rejected")
	uc.notifier.Notify(rejected.StudentEmail, notify.EventPaymentRejected, rejected)
	return rejected, nil
}
