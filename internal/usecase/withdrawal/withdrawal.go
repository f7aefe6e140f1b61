// Package withdrawal обрабатывает заявки на вывод средств с кошелька.
package withdrawal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/pkg/pagination"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
	"github.com/okalab/okalab-backend/internal/validation"
)

type RequestInput struct {
	Actor       authz.Actor
	UserType    string
	Amount      decimal.Decimal
	Method      string
	Destination string
}

type Processor struct {
	store    repository.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewProcessor(store repository.Store, notifier notify.Notifier) *Processor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Processor{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Request резервирует сумму: balance уменьшается, pending_balance растёт.
func (p *Processor) Request(ctx context.Context, in RequestInput) (*models.WithdrawalRequest, error) {
	if err := authz.RequireAuthenticated(in.Actor); err != nil {
		return nil, err
	}
	amount, err := valueobject.NewPositiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if !models.ValidUserType(in.UserType) {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип кошелька")
	}
	method := strings.TrimSpace(in.Method)
	destination := strings.TrimSpace(in.Destination)
	if method == "" || destination == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите способ и реквизиты вывода")
	}

	var request *models.WithdrawalRequest
	err = p.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		wallet, err := repos.Wallets().FindByOwnerForUpdate(ctx, validation.NormalizeEmail(in.Actor.Email), in.UserType)
		if apperror.IsNotFound(err) {
			return apperror.ErrInsufficientFunds
		}
		if err != nil {
			return err
		}
		if amount.GreaterThan(wallet.Balance) {
			return apperror.ErrInsufficientFunds
		}

		now := p.now()
		wallet.Balance = wallet.Balance.Sub(amount)
		wallet.PendingBalance = wallet.PendingBalance.Add(amount)
		wallet.UpdatedAt = now
		if err := repos.Wallets().Update(ctx, wallet); err != nil {
			return err
		}

		description := "Withdrawal via " + method
		tx := &models.Transaction{
			ID:          uuid.New(),
			WalletID:    &wallet.ID,
			UserEmail:   wallet.UserEmail,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      amount,
			Description: &description,
			Status:      models.TransactionStatusPending,
			CreatedAt:   now,
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}

		request = &models.WithdrawalRequest{
			ID:            uuid.New(),
			UserEmail:     wallet.UserEmail,
			UserType:      wallet.UserType,
			WalletID:      wallet.ID,
			TransactionID: tx.ID,
			Amount:        amount,
			Method:        method,
			Destination:   destination,
			Status:        models.WithdrawalStatusPending,
			CreatedAt:     now,
		}
		return repos.Withdrawals().Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"withdrawal_id": request.ID,
		"email":         request.UserEmail,
		"amount":        amount.StringFixed(2),
	}).Info("withdrawal requested")
	p.notifier.Notify(request.UserEmail, notify.EventWithdrawalRequested, request)
	return request, nil
}

// Approve списывает зарезервированную сумму окончательно.
func (p *Processor) Approve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return p.process(ctx, actor, id, func(w *models.Wallet, r *models.WithdrawalRequest) string {
		w.PendingBalance = w.PendingBalance.Sub(r.Amount)
		w.TotalWithdrawn = w.TotalWithdrawn.Add(r.Amount)
		r.Status = models.WithdrawalStatusApproved
		return models.TransactionStatusCompleted
	})
}

// Reject возвращает зарезервированную сумму на баланс.
func (p *Processor) Reject(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) (*models.WithdrawalRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = entity.DefaultRejectionReason
	}
	return p.process(ctx, actor, id, func(w *models.Wallet, r *models.WithdrawalRequest) string {
		w.PendingBalance = w.PendingBalance.Sub(r.Amount)
		w.Balance = w.Balance.Add(r.Amount)
		r.Status = models.WithdrawalStatusRejected
		r.Reason = &reason
		return models.TransactionStatusCancelled
	})
}

// process применяет решение администратора к заявке, кошельку и транзакции.
// apply возвращает итоговый статус транзакции.
func (p *Processor) process(ctx context.Context, actor authz.Actor, id uuid.UUID, apply func(*models.Wallet, *models.WithdrawalRequest) string) (*models.WithdrawalRequest, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}

	var request *models.WithdrawalRequest
	err := p.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		request, err = repos.Withdrawals().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if request.Status != models.WithdrawalStatusPending {
			return apperror.New(apperror.ErrCodeConflict, "заявка уже обработана")
		}

		wallet, err := repos.Wallets().FindByIDForUpdate(ctx, request.WalletID)
		if err != nil {
			return apperror.Consistency(err, "кошелёк заявки не найден")
		}

		now := p.now()
		txStatus := apply(wallet, request)
		wallet.UpdatedAt = now
		request.ProcessedAt = &now

		if err := repos.Wallets().Update(ctx, wallet); err != nil {
			return apperror.Consistency(err, "не удалось обновить кошелёк")
		}
		var completedAt *time.Time
		if txStatus == models.TransactionStatusCompleted {
			completedAt = &now
		}
		if err := repos.Transactions().UpdateStatus(ctx, request.TransactionID, txStatus, completedAt); err != nil {
			return apperror.Consistency(err, "не удалось обновить транзакцию вывода")
		}
		return repos.Withdrawals().Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	event := notify.EventWithdrawalApproved
	if request.Status == models.WithdrawalStatusRejected {
		event = notify.EventWithdrawalRejected
	}
	logger.Log.WithFields(map[string]interface{}{
		"withdrawal_id": request.ID,
		"status":        request.Status,
		"admin":         actor.Email,
	}).Info("withdrawal processed")
	p.notifier.Notify(request.UserEmail, event, request)
	return request, nil
}

func (p *Processor) ListMine(ctx context.Context, actor authz.Actor, limit, offset int) ([]models.WithdrawalRequest, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	limit, offset = pagination.Normalize(limit, offset)
	return p.store.Withdrawals().ListByEmail(ctx, validation.NormalizeEmail(actor.Email), limit, offset)
}

func (p *Processor) ListAll(ctx context.Context, actor authz.Actor, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	switch status {
	case "", models.WithdrawalStatusPending, models.WithdrawalStatusApproved, models.WithdrawalStatusRejected:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	limit, offset = pagination.Normalize(limit, offset)
	return p.store.Withdrawals().List(ctx, repository.WithdrawalFilter{Status: status, Limit: limit, Offset: offset})
}
