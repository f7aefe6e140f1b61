package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

type SeminarRepository struct {
	q sqlx.ExtContext
}

func (r *SeminarRepository) Create(ctx context.Context, s *entity.Seminar) error {
	query := `
		INSERT INTO seminars (id, professor_id, professor_email, title, status, target_income, target_students,
		                      max_students, price, platform_fee_percent, professor_bonus_percent, payment_due_days,
		                      start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.ProfessorID,
		s.ProfessorEmail,
		s.Title,
		string(s.Status),
		s.TargetIncome,
		s.TargetStudents,
		s.MaxStudents,
		s.Price,
		s.PlatformFeePercent,
		s.ProfessorBonusPercent,
		s.PaymentDueDays,
		s.StartDate,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return common.DBError(err, "не удалось создать семинар")
}

func (r *SeminarRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seminar, error) {
	return common.GetByID[entity.Seminar](ctx, r.q, "seminars", id, apperror.ErrSeminarNotFound)
}

func (r *SeminarRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Seminar, error) {
	return common.GetByIDForUpdate[entity.Seminar](ctx, r.q, "seminars", id, apperror.ErrSeminarNotFound)
}

func (r *SeminarRepository) ListAwaitingPaymentWindow(ctx context.Context) ([]*entity.Seminar, error) {
	return common.SelectAll[*entity.Seminar](ctx, r.q, `
		SELECT * FROM seminars
		WHERE status IN ('published', 'in_progress') AND payment_window_notified_at IS NULL
		ORDER BY start_date
	`)
}

func (r *SeminarRepository) MarkPaymentWindowNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE seminars SET payment_window_notified_at = $2, updated_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return common.DBError(err, "не удалось отметить напоминание об оплате")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrSeminarNotFound
	}
	return nil
}
