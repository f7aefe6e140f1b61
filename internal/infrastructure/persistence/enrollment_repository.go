package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

type EnrollmentRepository struct {
	q sqlx.ExtContext
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *entity.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, seminar_id, student_id, student_email, invited_by_email, status, payment_status,
		                         final_price, amount_paid, rejection_reason, submitted_at, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.q.ExecContext(ctx, query,
		e.ID,
		e.SeminarID,
		e.StudentID,
		e.StudentEmail,
		e.InvitedByEmail,
		string(e.Status),
		string(e.PaymentStatus),
		e.FinalPrice,
		e.AmountPaid,
		e.RejectionReason,
		e.SubmittedAt,
		e.PaidAt,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return common.DBError(err, "не удалось создать запись на семинар")
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *entity.Enrollment) error {
	query := `
		UPDATE enrollments
		SET status = $2, payment_status = $3, final_price = $4, amount_paid = $5,
		    rejection_reason = $6, submitted_at = $7, paid_at = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		e.ID,
		string(e.Status),
		string(e.PaymentStatus),
		e.FinalPrice,
		e.AmountPaid,
		e.RejectionReason,
		e.SubmittedAt,
		e.PaidAt,
		e.UpdatedAt,
	)
	if err != nil {
		return common.DBError(err, "не удалось обновить запись на семинар")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrEnrollmentNotFound
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	return common.GetByID[entity.Enrollment](ctx, r.q, "enrollments", id, apperror.ErrEnrollmentNotFound)
}

func (r *EnrollmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	return common.GetByIDForUpdate[entity.Enrollment](ctx, r.q, "enrollments", id, apperror.ErrEnrollmentNotFound)
}

func (r *EnrollmentRepository) FindActiveByStudent(ctx context.Context, seminarID, studentID uuid.UUID) (*entity.Enrollment, error) {
	return common.GetOne[entity.Enrollment](ctx, r.q, `
		SELECT * FROM enrollments
		WHERE seminar_id = $1 AND student_id = $2 AND status <> 'cancelled'
	`, apperror.ErrEnrollmentNotFound, seminarID, studentID)
}

// MarkPendingPayment условный UPDATE: из двух одновременных отправок проходит одна.
func (r *EnrollmentRepository) MarkPendingPayment(ctx context.Context, e *entity.Enrollment) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE enrollments
		SET payment_status = $2, final_price = $3, rejection_reason = NULL, submitted_at = $4, updated_at = $5
		WHERE id = $1 AND payment_status IN ('unpaid', 'rejected')
	`, e.ID, string(e.PaymentStatus), e.FinalPrice, e.SubmittedAt, e.UpdatedAt)
	if err != nil {
		return false, common.DBError(err, "не удалось отправить оплату")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.DBError(err, "не удалось отправить оплату")
	}
	return n == 1, nil
}

func (r *EnrollmentRepository) CountActive(ctx context.Context, seminarID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count, `
		SELECT COUNT(*) FROM enrollments WHERE seminar_id = $1 AND status <> 'cancelled'
	`, seminarID)
	if err != nil {
		return 0, common.DBError(err, "не удалось посчитать записи")
	}
	return count, nil
}

func (r *EnrollmentRepository) CountActiveBySeminars(ctx context.Context, seminarIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(seminarIDs))
	if len(seminarIDs) == 0 {
		return counts, nil
	}
	ids := make([]string, len(seminarIDs))
	for i, id := range seminarIDs {
		ids[i] = id.String()
		counts[id] = 0
	}

	var rows []struct {
		SeminarID uuid.UUID `db:"seminar_id"`
		Count     int       `db:"count"`
	}
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT seminar_id, COUNT(*) AS count FROM enrollments
		WHERE seminar_id = ANY($1::uuid[]) AND status <> 'cancelled'
		GROUP BY seminar_id
	`, pq.Array(ids))
	if err != nil {
		return nil, common.DBError(err, "не удалось посчитать записи")
	}
	for _, row := range rows {
		counts[row.SeminarID] = row.Count
	}
	return counts, nil
}

func (r *EnrollmentRepository) SumPaid(ctx context.Context, seminarID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlx.GetContext(ctx, r.q, &total, `
		SELECT COALESCE(SUM(final_price), 0) FROM enrollments
		WHERE seminar_id = $1 AND payment_status = 'paid'
	`, seminarID)
	if err != nil {
		return decimal.Zero, common.DBError(err, "не удалось посчитать собранную сумму")
	}
	return total, nil
}

func (r *EnrollmentRepository) ListPaidReferrers(ctx context.Context, seminarID uuid.UUID) ([]string, error) {
	return common.SelectAll[string](ctx, r.q, `
		SELECT invited_by_email FROM enrollments
		WHERE seminar_id = $1 AND payment_status = 'paid' AND invited_by_email IS NOT NULL
		ORDER BY invited_by_email
	`, seminarID)
}

func (r *EnrollmentRepository) ListAwaitingPayment(ctx context.Context, seminarID uuid.UUID) ([]*entity.Enrollment, error) {
	return common.SelectAll[*entity.Enrollment](ctx, r.q, `
		SELECT * FROM enrollments
		WHERE seminar_id = $1 AND status <> 'cancelled' AND payment_status IN ('unpaid', 'rejected')
		ORDER BY created_at
	`, seminarID)
}

func (r *EnrollmentRepository) List(ctx context.Context, filter repository.EnrollmentFilter) ([]*entity.Enrollment, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if filter.SeminarID != uuid.Nil {
		args = append(args, filter.SeminarID)
		conditions = append(conditions, fmt.Sprintf("seminar_id = $%d", len(args)))
	}
	if filter.StudentID != uuid.Nil {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	switch valueobject.PaymentStatus(filter.PaymentStatus) {
	case "":
	case valueobject.PaymentStatusPendingPayment:
		conditions = append(conditions, "payment_status IN ('pending_payment', 'pending')")
	default:
		args = append(args, filter.PaymentStatus)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	query := `SELECT * FROM enrollments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return common.SelectAll[*entity.Enrollment](ctx, r.q, query, args...)
}
