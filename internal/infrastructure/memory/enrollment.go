package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

type enrollmentRepo struct {
	repos
}

func (r *enrollmentRepo) Create(ctx context.Context, e *entity.Enrollment) error {
	defer r.lock()()
	if _, ok := r.t().seminars[e.SeminarID]; !ok {
		return apperror.ErrSeminarNotFound
	}
	for _, existing := range r.t().enrollments {
		if existing.SeminarID == e.SeminarID && existing.StudentID == e.StudentID && existing.IsActive() {
			return apperror.New(apperror.ErrCodeConflict, "студент уже записан на семинар")
		}
	}
	r.t().enrollments[e.ID] = *e
	return nil
}

func (r *enrollmentRepo) Update(ctx context.Context, e *entity.Enrollment) error {
	defer r.lock()()
	if _, ok := r.t().enrollments[e.ID]; !ok {
		return apperror.ErrEnrollmentNotFound
	}
	r.t().enrollments[e.ID] = *e
	return nil
}

func (r *enrollmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	defer r.lock()()
	e, ok := r.t().enrollments[id]
	if !ok {
		return nil, apperror.ErrEnrollmentNotFound
	}
	return &e, nil
}

func (r *enrollmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	return r.FindByID(ctx, id)
}

func (r *enrollmentRepo) FindActiveByStudent(ctx context.Context, seminarID, studentID uuid.UUID) (*entity.Enrollment, error) {
	defer r.lock()()
	for _, e := range r.t().enrollments {
		if e.SeminarID == seminarID && e.StudentID == studentID && e.IsActive() {
			e := e
			return &e, nil
		}
	}
	return nil, apperror.ErrEnrollmentNotFound
}

func (r *enrollmentRepo) MarkPendingPayment(ctx context.Context, e *entity.Enrollment) (bool, error) {
	defer r.lock()()
	current, ok := r.t().enrollments[e.ID]
	if !ok {
		return false, apperror.ErrEnrollmentNotFound
	}
	if !current.PaymentStatus.CanSubmit() {
		return false, nil
	}
	r.t().enrollments[e.ID] = *e
	return true, nil
}

func (r *enrollmentRepo) CountActive(ctx context.Context, seminarID uuid.UUID) (int, error) {
	defer r.lock()()
	count := 0
	for _, e := range r.t().enrollments {
		if e.SeminarID == seminarID && e.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *enrollmentRepo) CountActiveBySeminars(ctx context.Context, seminarIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	defer r.lock()()
	counts := make(map[uuid.UUID]int, len(seminarIDs))
	for _, id := range seminarIDs {
		counts[id] = 0
	}
	for _, e := range r.t().enrollments {
		if _, ok := counts[e.SeminarID]; ok && e.IsActive() {
			counts[e.SeminarID]++
		}
	}
	return counts, nil
}

func (r *enrollmentRepo) SumPaid(ctx context.Context, seminarID uuid.UUID) (decimal.Decimal, error) {
	defer r.lock()()
	total := decimal.Zero
	for _, e := range r.t().enrollments {
		if e.SeminarID == seminarID && e.PaymentStatus == valueobject.PaymentStatusPaid && e.FinalPrice.Valid {
			total = total.Add(e.FinalPrice.Decimal)
		}
	}
	return total, nil
}

func (r *enrollmentRepo) ListPaidReferrers(ctx context.Context, seminarID uuid.UUID) ([]string, error) {
	defer r.lock()()
	referrers := make([]string, 0)
	for _, e := range r.t().enrollments {
		if e.SeminarID == seminarID && e.PaymentStatus == valueobject.PaymentStatusPaid && e.InvitedByEmail != nil {
			referrers = append(referrers, *e.InvitedByEmail)
		}
	}
	sort.Strings(referrers)
	return referrers, nil
}

func (r *enrollmentRepo) ListAwaitingPayment(ctx context.Context, seminarID uuid.UUID) ([]*entity.Enrollment, error) {
	defer r.lock()()
	result := make([]*entity.Enrollment, 0)
	for _, e := range r.t().enrollments {
		if e.SeminarID == seminarID && e.IsActive() && e.PaymentStatus.CanSubmit() {
			e := e
			result = append(result, &e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *enrollmentRepo) List(ctx context.Context, filter repository.EnrollmentFilter) ([]*entity.Enrollment, error) {
	defer r.lock()()
	result := make([]*entity.Enrollment, 0)
	for _, e := range r.t().enrollments {
		if filter.SeminarID != uuid.Nil && e.SeminarID != filter.SeminarID {
			continue
		}
		if filter.StudentID != uuid.Nil && e.StudentID != filter.StudentID {
			continue
		}
		if !matchPaymentStatus(e.PaymentStatus, filter.PaymentStatus) {
			continue
		}
		e := e
		result = append(result, &e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func matchPaymentStatus(status valueobject.PaymentStatus, want string) bool {
	switch valueobject.PaymentStatus(want) {
	case "":
		return true
	case valueobject.PaymentStatusPendingPayment:
		return status.AwaitingApproval()
	default:
		return status == valueobject.PaymentStatus(want)
	}
}
