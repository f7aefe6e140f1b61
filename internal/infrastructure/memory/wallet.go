package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

type walletRepo struct {
	repos
}

func (r *walletRepo) Create(ctx context.Context, w *models.Wallet) error {
	defer r.lock()()
	for _, existing := range r.t().wallets {
		if existing.UserEmail == w.UserEmail && existing.UserType == w.UserType {
			return nil
		}
	}
	r.t().wallets[w.ID] = *w
	return nil
}

func (r *walletRepo) Update(ctx context.Context, w *models.Wallet) error {
	defer r.lock()()
	if _, ok := r.t().wallets[w.ID]; !ok {
		return apperror.ErrWalletNotFound
	}
	if w.Balance.IsNegative() || w.PendingBalance.IsNegative() {
		return apperror.New(apperror.ErrCodeConsistency, "баланс кошелька не может быть отрицательным")
	}
	r.t().wallets[w.ID] = *w
	return nil
}

func (r *walletRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	defer r.lock()()
	w, ok := r.t().wallets[id]
	if !ok {
		return nil, apperror.ErrWalletNotFound
	}
	return &w, nil
}

func (r *walletRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return r.FindByID(ctx, id)
}

func (r *walletRepo) FindByOwner(ctx context.Context, email, userType string) (*models.Wallet, error) {
	defer r.lock()()
	for _, w := range r.t().wallets {
		if w.UserEmail == email && w.UserType == userType {
			w := w
			return &w, nil
		}
	}
	return nil, apperror.ErrWalletNotFound
}

func (r *walletRepo) FindByOwnerForUpdate(ctx context.Context, email, userType string) (*models.Wallet, error) {
	return r.FindByOwner(ctx, email, userType)
}

func (r *walletRepo) ListByEmail(ctx context.Context, email string) ([]models.Wallet, error) {
	defer r.lock()()
	result := make([]models.Wallet, 0)
	for _, w := range r.t().wallets {
		if w.UserEmail == email {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserType < result[j].UserType })
	return result, nil
}

func (r *walletRepo) List(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	defer r.lock()()
	result := make([]models.Wallet, 0, len(r.t().wallets))
	for _, w := range r.t().wallets {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserEmail == result[j].UserEmail {
			return result[i].UserType < result[j].UserType
		}
		return result[i].UserEmail < result[j].UserEmail
	})
	return paginate(result, limit, offset), nil
}

type transactionRepo struct {
	repos
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	defer r.lock()()
	if !tx.Amount.IsPositive() {
		return apperror.ErrInvalidAmount
	}
	r.t().transactions[tx.ID] = *tx
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	defer r.lock()()
	tx, ok := r.t().transactions[id]
	if !ok {
		return nil, apperror.New(apperror.ErrCodeNotFound, "транзакция не найдена")
	}
	return &tx, nil
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) error {
	defer r.lock()()
	tx, ok := r.t().transactions[id]
	if !ok {
		return apperror.New(apperror.ErrCodeNotFound, "транзакция не найдена")
	}
	tx.Status = status
	tx.CompletedAt = completedAt
	r.t().transactions[id] = tx
	return nil
}

func (r *transactionRepo) ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.Transaction, error) {
	defer r.lock()()
	result := make([]models.Transaction, 0)
	for _, tx := range r.t().transactions {
		if tx.UserEmail == email {
			result = append(result, tx)
		}
	}
	sortTransactions(result)
	return paginate(result, limit, offset), nil
}

func (r *transactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	defer r.lock()()
	result := make([]models.Transaction, 0)
	for _, tx := range r.t().transactions {
		if tx.WalletID != nil && *tx.WalletID == walletID {
			result = append(result, tx)
		}
	}
	sortTransactions(result)
	return result, nil
}

func (r *transactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	defer r.lock()()
	result := make([]models.Transaction, 0)
	for _, tx := range r.t().transactions {
		if (filter.Type == "" || tx.Type == filter.Type) && (filter.Status == "" || tx.Status == filter.Status) {
			result = append(result, tx)
		}
	}
	sortTransactions(result)
	return paginate(result, filter.Limit, filter.Offset), nil
}

// sortTransactions новые сверху.
func sortTransactions(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID.String() < txs[j].ID.String()
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

type withdrawalRepo struct {
	repos
}

func (r *withdrawalRepo) Create(ctx context.Context, w *models.WithdrawalRequest) error {
	defer r.lock()()
	r.t().withdrawals[w.ID] = *w
	return nil
}

func (r *withdrawalRepo) Update(ctx context.Context, w *models.WithdrawalRequest) error {
	defer r.lock()()
	if _, ok := r.t().withdrawals[w.ID]; !ok {
		return apperror.ErrWithdrawalNotFound
	}
	r.t().withdrawals[w.ID] = *w
	return nil
}

func (r *withdrawalRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	defer r.lock()()
	w, ok := r.t().withdrawals[id]
	if !ok {
		return nil, apperror.ErrWithdrawalNotFound
	}
	return &w, nil
}

func (r *withdrawalRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *withdrawalRepo) ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.WithdrawalRequest, error) {
	defer r.lock()()
	result := make([]models.WithdrawalRequest, 0)
	for _, w := range r.t().withdrawals {
		if w.UserEmail == email {
			result = append(result, w)
		}
	}
	sortWithdrawals(result)
	return paginate(result, limit, offset), nil
}

func (r *withdrawalRepo) List(ctx context.Context, filter repository.WithdrawalFilter) ([]models.WithdrawalRequest, error) {
	defer r.lock()()
	result := make([]models.WithdrawalRequest, 0)
	for _, w := range r.t().withdrawals {
		if filter.Status == "" || w.Status == filter.Status {
			result = append(result, w)
		}
	}
	sortWithdrawals(result)
	return paginate(result, filter.Limit, filter.Offset), nil
}

func sortWithdrawals(ws []models.WithdrawalRequest) {
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].CreatedAt.After(ws[j].CreatedAt) })
}

type settlementRepo struct {
	repos
}

func (r *settlementRepo) GetForUpdate(ctx context.Context, seminarID uuid.UUID) (*models.SeminarSettlement, error) {
	defer r.lock()()
	if s, ok := r.t().settlements[seminarID]; ok {
		return &s, nil
	}
	return &models.SeminarSettlement{SeminarID: seminarID}, nil
}

func (r *settlementRepo) Save(ctx context.Context, s *models.SeminarSettlement) error {
	defer r.lock()()
	r.t().settlements[s.SeminarID] = *s
	return nil
}

type settingsRepo struct {
	repos
}

func (r *settingsRepo) Get(ctx context.Context) (*models.PlatformSettings, error) {
	defer r.lock()()
	if r.t().settings == nil {
		return nil, apperror.New(apperror.ErrCodeNotFound, "настройки платформы не заданы")
	}
	s := *r.t().settings
	return &s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s *models.PlatformSettings) error {
	defer r.lock()()
	saved := *s
	saved.ID = 1
	r.t().settings = &saved
	return nil
}
