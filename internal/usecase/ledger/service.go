package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/pkg/pagination"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
	"github.com/okalab/okalab-backend/internal/validation"
)

// Service операции с кошельками вне сценариев оплаты.
type Service struct {
	store    repository.Store
	ledger   *Ledger
	notifier notify.Notifier
}

func NewService(store repository.Store, ledger *Ledger, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, ledger: ledger, notifier: notifier}
}

// Credit ручное зачисление администратором в отдельной транзакции.
func (s *Service) Credit(ctx context.Context, actor authz.Actor, in CreditInput) (*models.Transaction, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	in.Email = validation.NormalizeEmail(in.Email)

	var tx *models.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		tx, err = s.ledger.Credit(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"email":  in.Email,
		"type":   in.Type,
		"amount": tx.Amount.StringFixed(2),
		"admin":  actor.Email,
	}).Info("wallet credited")
	s.notifier.Notify(in.Email, notify.EventWalletCredited, tx)
	return tx, nil
}

// GetBalanceSummary сводка по кошельку. Пустой userType суммирует все кошельки пользователя.
// Отсутствующий кошелёк даёт нули.
func (s *Service) GetBalanceSummary(ctx context.Context, email, userType string) (models.BalanceSummary, error) {
	summary := models.BalanceSummary{}
	email = validation.NormalizeEmail(email)
	if userType != "" {
		if !models.ValidUserType(userType) {
			return summary, apperror.New(apperror.ErrCodeValidation, "некорректный тип кошелька")
		}
		wallet, err := s.store.Wallets().FindByOwner(ctx, email, userType)
		if apperror.IsNotFound(err) {
			return summary, nil
		}
		if err != nil {
			return summary, err
		}
		return summary.Add(wallet), nil
	}

	wallets, err := s.store.Wallets().ListByEmail(ctx, email)
	if err != nil {
		return summary, err
	}
	for i := range wallets {
		summary = summary.Add(&wallets[i])
	}
	return summary, nil
}

func (s *Service) ListTransactions(ctx context.Context, email string, limit, offset int) ([]models.Transaction, error) {
	limit, offset = pagination.Normalize(limit, offset)
	return s.store.Transactions().ListByEmail(ctx, validation.NormalizeEmail(email), limit, offset)
}

// ListWallets все кошельки платформы для администратора.
func (s *Service) ListWallets(ctx context.Context, actor authz.Actor, limit, offset int) ([]models.Wallet, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	limit, offset = pagination.Normalize(limit, offset)
	return s.store.Wallets().List(ctx, limit, offset)
}

// ListAllTransactions журнал всех транзакций для администратора, включая комиссии платформы.
func (s *Service) ListAllTransactions(ctx context.Context, actor authz.Actor, txType, status string, limit, offset int) ([]models.Transaction, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	switch txType {
	case "", models.TransactionTypeSeminarIncome, models.TransactionTypeReferralBonus, models.TransactionTypePlatformFee,
		models.TransactionTypeWithdrawal, models.TransactionTypeSurplusDistribution:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип транзакции")
	}
	switch status {
	case "", models.TransactionStatusPending, models.TransactionStatusCompleted, models.TransactionStatusCancelled:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус транзакции")
	}
	limit, offset = pagination.Normalize(limit, offset)
	return s.store.Transactions().List(ctx, repository.TransactionFilter{
		Type:   txType,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}

// Reconciliation сравнение материализованного кошелька с журналом.
type Reconciliation struct {
	WalletID   uuid.UUID             `json:"wallet_id"`
	Stored     models.BalanceSummary `json:"stored"`
	FromLedger models.BalanceSummary `json:"from_ledger"`
	Consistent bool                  `json:"consistent"`
}

// Reconcile пересчитывает баланс кошелька по журналу.
func (s *Service) Reconcile(ctx context.Context, walletID uuid.UUID) (*Reconciliation, error) {
	wallet, err := s.store.Wallets().FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	computed := Replay(txs)
	stored := models.BalanceSummary{}.Add(wallet)
	result := &Reconciliation{
		WalletID:   walletID,
		Stored:     stored,
		FromLedger: computed,
		Consistent: stored.Balance.Equal(computed.Balance) &&
			stored.PendingBalance.Equal(computed.PendingBalance) &&
			stored.TotalEarned.Equal(computed.TotalEarned) &&
			stored.TotalWithdrawn.Equal(computed.TotalWithdrawn),
	}
	if !result.Consistent {
		logger.Log.WithFields(map[string]interface{}{
			"wallet_id":      walletID,
			"stored_balance": stored.Balance.StringFixed(2),
			"ledger_balance": computed.Balance.StringFixed(2),
		}).Error("wallet does not match ledger")
	}
	return result, nil
}

// Replay строит сводку кошелька по его транзакциям.
func Replay(txs []models.Transaction) models.BalanceSummary {
	earned, pending, withdrawn := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeWithdrawal {
			if tx.Status == models.TransactionStatusCompleted {
				earned = earned.Add(tx.Amount)
			}
			continue
		}
		switch tx.Status {
		case models.TransactionStatusPending:
			pending = pending.Add(tx.Amount)
		case models.TransactionStatusCompleted:
			withdrawn = withdrawn.Add(tx.Amount)
		}
	}
	return models.BalanceSummary{
		Balance:        earned.Sub(pending).Sub(withdrawn),
		PendingBalance: pending,
		TotalEarned:    earned,
		TotalWithdrawn: withdrawn,
	}
}
