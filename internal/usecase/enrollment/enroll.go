package enrollment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
	"github.com/okalab/okalab-backend/internal/validation"
)

type EnrollInput struct {
	Actor     authz.Actor
	SeminarID uuid.UUID
	// ReferralCode id записи пригласившего студента на тот же семинар.
	ReferralCode string
}

type EnrollResult struct {
	Enrollment *entity.Enrollment
	Created    bool
}

type EnrollUseCase struct {
	store    repository.Store
	counts   cache.CountCache
	notifier notify.Notifier
	now      func() time.Time
}

func NewEnrollUseCase(store repository.Store, counts cache.CountCache, notifier notify.Notifier) *EnrollUseCase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &EnrollUseCase{
		store:    store,
		counts:   counts,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute записывает студента на семинар. Повторная запись возвращает существующую.
// Вместимость проверяется под блокировкой строки семинара.
func (uc *EnrollUseCase) Execute(ctx context.Context, input EnrollInput) (*EnrollResult, error) {
	if err := authz.RequireAuthenticated(input.Actor); err != nil {
		return nil, err
	}
	referralID := parseReferralCode(input.ReferralCode)
	studentEmail := validation.NormalizeEmail(input.Actor.Email)

	result := &EnrollResult{}
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		seminar, err := repos.Seminars().FindByIDForUpdate(ctx, input.SeminarID)
		if err != nil {
			return err
		}
		if !seminar.Status.AcceptsEnrollments() {
			return apperror.New(apperror.ErrCodeValidation, "семинар не принимает записи")
		}
		if seminar.IsOwnedBy(input.Actor.UserID) {
			return apperror.New(apperror.ErrCodeForbidden, "профессор не может записаться на свой семинар")
		}

		existing, err := repos.Enrollments().FindActiveByStudent(ctx, seminar.ID, input.Actor.UserID)
		if err == nil {
			result.Enrollment = existing
			return nil
		}
		if !apperror.IsNotFound(err) {
			return err
		}

		count, err := repos.Enrollments().CountActive(ctx, seminar.ID)
		if err != nil {
			return err
		}
		if err := pricing.CanCreateEnrollment(seminar, count); err != nil {
			return err
		}

		var invitedBy *string
		if referralID != uuid.Nil {
			referrer, err := resolveReferrer(ctx, repos, seminar.ID, referralID, input.Actor.UserID, studentEmail)
			if err != nil {
				return err
			}
			invitedBy = referrer
		}

		e := entity.NewEnrollment(seminar.ID, input.Actor.UserID, studentEmail, invitedBy)
		e.CreatedAt = uc.now()
		e.UpdatedAt = e.CreatedAt
		if err := repos.Enrollments().Create(ctx, e); err != nil {
			return err
		}
		result.Enrollment = e
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		uc.counts.Invalidate(ctx, input.SeminarID)
		logger.Log.WithFields(map[string]interface{}{
			"enrollment_id": result.Enrollment.ID,
			"seminar_id":    input.SeminarID,
			"student":       studentEmail,
		}).Info("student enrolled")
		uc.notifier.Notify(studentEmail, notify.EventEnrollmentCreated, result.Enrollment)
	}
	return result, nil
}

// parseReferralCode возвращает uuid.Nil для пустого или некорректного кода.
func parseReferralCode(code string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// resolveReferrer принимает только активную запись другого студента на тот же семинар.
// Неразрешённый код даёт nil, запись создаётся без пригласившего.
func resolveReferrer(ctx context.Context, repos repository.Repositories, seminarID, referralID, studentID uuid.UUID, studentEmail string) (*string, error) {
	referrer, err := repos.Enrollments().FindByID(ctx, referralID)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if referrer.SeminarID != seminarID || !referrer.IsActive() ||
		referrer.StudentID == studentID || referrer.StudentEmail == studentEmail {
		return nil, nil
	}
	email := referrer.StudentEmail
	return &email, nil
}
