package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

type WithdrawalRepository struct {
	q sqlx.ExtContext
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.WithdrawalRequest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, user_email, user_type, wallet_id, transaction_id, amount, method,
		                                 destination, status, reason, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		w.ID,
		w.UserEmail,
		w.UserType,
		w.WalletID,
		w.TransactionID,
		w.Amount,
		w.Method,
		w.Destination,
		w.Status,
		w.Reason,
		w.CreatedAt,
		w.ProcessedAt,
	)
	return common.DBError(err, "не удалось создать заявку на вывод")
}

func (r *WithdrawalRepository) Update(ctx context.Context, w *models.WithdrawalRequest) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE withdrawal_requests SET status = $2, reason = $3, processed_at = $4 WHERE id = $1
	`, w.ID, w.Status, w.Reason, w.ProcessedAt)
	if err != nil {
		return common.DBError(err, "не удалось обновить заявку на вывод")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrWithdrawalNotFound
	}
	return nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return common.GetByID[models.WithdrawalRequest](ctx, r.q, "withdrawal_requests", id, apperror.ErrWithdrawalNotFound)
}

func (r *WithdrawalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return common.GetByIDForUpdate[models.WithdrawalRequest](ctx, r.q, "withdrawal_requests", id, apperror.ErrWithdrawalNotFound)
}

func (r *WithdrawalRepository) ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.WithdrawalRequest, error) {
	return common.SelectAll[models.WithdrawalRequest](ctx, r.q, `
		SELECT * FROM withdrawal_requests WHERE user_email = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, email, limit, offset)
}

func (r *WithdrawalRepository) List(ctx context.Context, filter repository.WithdrawalFilter) ([]models.WithdrawalRequest, error) {
	query := `SELECT * FROM withdrawal_requests`
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return common.SelectAll[models.WithdrawalRequest](ctx, r.q, query, args...)
}
