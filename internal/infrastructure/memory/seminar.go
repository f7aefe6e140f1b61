package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

type seminarRepo struct {
	repos
}

func (r *seminarRepo) Create(ctx context.Context, s *entity.Seminar) error {
	defer r.lock()()
	r.t().seminars[s.ID] = *s
	return nil
}

func (r *seminarRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seminar, error) {
	defer r.lock()()
	s, ok := r.t().seminars[id]
	if !ok {
		return nil, apperror.ErrSeminarNotFound
	}
	return &s, nil
}

func (r *seminarRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Seminar, error) {
	return r.FindByID(ctx, id)
}

func (r *seminarRepo) ListAwaitingPaymentWindow(ctx context.Context) ([]*entity.Seminar, error) {
	defer r.lock()()
	result := make([]*entity.Seminar, 0)
	for _, s := range r.t().seminars {
		if s.Status.AcceptsEnrollments() && s.PaymentWindowNotifiedAt == nil {
			s := s
			result = append(result, &s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (r *seminarRepo) MarkPaymentWindowNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer r.lock()()
	s, ok := r.t().seminars[id]
	if !ok {
		return apperror.ErrSeminarNotFound
	}
	s.PaymentWindowNotifiedAt = &at
	s.UpdatedAt = at
	r.t().seminars[id] = s
	return nil
}
