package enrollment

import (
	"context"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/pkg/pagination"
)

// ListEnrollmentsUseCase списки записей для студента, профессора и администратора.
type ListEnrollmentsUseCase struct {
	store repository.Store
}

func NewListEnrollmentsUseCase(store repository.Store) *ListEnrollmentsUseCase {
	return &ListEnrollmentsUseCase{store: store}
}

// Mine записи текущего студента, включая отменённые.
func (uc *ListEnrollmentsUseCase) Mine(ctx context.Context, actor authz.Actor, limit, offset int) ([]*entity.Enrollment, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	limit, offset = pagination.Normalize(limit, offset)
	return uc.store.Enrollments().List(ctx, repository.EnrollmentFilter{
		StudentID: actor.UserID,
		Limit:     limit,
		Offset:    offset,
	})
}

// BySeminar записи семинара. Доступно владельцу семинара и администратору.
func (uc *ListEnrollmentsUseCase) BySeminar(ctx context.Context, actor authz.Actor, seminarID uuid.UUID, limit, offset int) ([]*entity.Enrollment, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	seminar, err := uc.store.Seminars().FindByID(ctx, seminarID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAdminOrOwner(actor, seminar.ProfessorID); err != nil {
		return nil, err
	}
	limit, offset = pagination.Normalize(limit, offset)
	return uc.store.Enrollments().List(ctx, repository.EnrollmentFilter{
		SeminarID: seminarID,
		Limit:     limit,
		Offset:    offset,
	})
}

// All очередь администратора. paymentStatus=pending_payment отдаёт записи, ждущие подтверждения.
func (uc *ListEnrollmentsUseCase) All(ctx context.Context, actor authz.Actor, paymentStatus string, limit, offset int) ([]*entity.Enrollment, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if paymentStatus != "" && !valueobject.PaymentStatus(paymentStatus).IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус оплаты")
	}
	limit, offset = pagination.Normalize(limit, offset)
	return uc.store.Enrollments().List(ctx, repository.EnrollmentFilter{
		PaymentStatus: paymentStatus,
		Limit:         limit,
		Offset:        offset,
	})
}
