package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

var errTransactionNotFound = apperror.New(apperror.ErrCodeNotFound, "транзакция не найдена")

type WalletRepository struct {
	q sqlx.ExtContext
}

func (r *WalletRepository) Create(ctx context.Context, w *models.Wallet) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO wallets (id, user_email, user_type, balance, pending_balance, total_earned, total_withdrawn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_email, user_type) DO NOTHING
	`, w.ID, w.UserEmail, w.UserType, w.Balance, w.PendingBalance, w.TotalEarned, w.TotalWithdrawn, w.CreatedAt, w.UpdatedAt)
	return common.DBError(err, "не удалось создать кошелёк")
}

func (r *WalletRepository) Update(ctx context.Context, w *models.Wallet) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $2, pending_balance = $3, total_earned = $4, total_withdrawn = $5, updated_at = $6
		WHERE id = $1
	`, w.ID, w.Balance, w.PendingBalance, w.TotalEarned, w.TotalWithdrawn, w.UpdatedAt)
	if err != nil {
		return common.DBError(err, "не удалось обновить кошелёк")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrWalletNotFound
	}
	return nil
}

func (r *WalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return common.GetByID[models.Wallet](ctx, r.q, "wallets", id, apperror.ErrWalletNotFound)
}

func (r *WalletRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return common.GetByIDForUpdate[models.Wallet](ctx, r.q, "wallets", id, apperror.ErrWalletNotFound)
}

func (r *WalletRepository) FindByOwner(ctx context.Context, email, userType string) (*models.Wallet, error) {
	return common.GetOne[models.Wallet](ctx, r.q,
		`SELECT * FROM wallets WHERE user_email = $1 AND user_type = $2`,
		apperror.ErrWalletNotFound, email, userType)
}

func (r *WalletRepository) FindByOwnerForUpdate(ctx context.Context, email, userType string) (*models.Wallet, error) {
	return common.GetOne[models.Wallet](ctx, r.q,
		`SELECT * FROM wallets WHERE user_email = $1 AND user_type = $2 FOR UPDATE`,
		apperror.ErrWalletNotFound, email, userType)
}

func (r *WalletRepository) ListByEmail(ctx context.Context, email string) ([]models.Wallet, error) {
	return common.SelectAll[models.Wallet](ctx, r.q,
		`SELECT * FROM wallets WHERE user_email = $1 ORDER BY user_type`, email)
}

func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	return common.SelectAll[models.Wallet](ctx, r.q,
		`SELECT * FROM wallets ORDER BY user_email, user_type LIMIT $1 OFFSET $2`, limit, offset)
}

type TransactionRepository struct {
	q sqlx.ExtContext
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, user_email, type, amount, seminar_id, enrollment_id,
		                                 description, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		tx.ID,
		tx.WalletID,
		tx.UserEmail,
		tx.Type,
		tx.Amount,
		tx.SeminarID,
		tx.EnrollmentID,
		tx.Description,
		tx.Status,
		tx.CreatedAt,
		tx.CompletedAt,
	)
	return common.DBError(err, "не удалось записать транзакцию")
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return common.GetByID[models.Transaction](ctx, r.q, "wallet_transactions", id, errTransactionNotFound)
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $2, completed_at = $3 WHERE id = $1`,
		id, status, completedAt)
	if err != nil {
		return common.DBError(err, "не удалось обновить транзакцию")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.Transaction, error) {
	return common.SelectAll[models.Transaction](ctx, r.q, `
		SELECT * FROM wallet_transactions WHERE user_email = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3
	`, email, limit, offset)
}

func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	return common.SelectAll[models.Transaction](ctx, r.q, `
		SELECT * FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at DESC, id
	`, walletID)
}

func (r *TransactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT * FROM wallet_transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return common.SelectAll[models.Transaction](ctx, r.q, query, args...)
}
