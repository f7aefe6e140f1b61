// Package ledger ведёт журнал транзакций кошельков. Каждое изменение баланса
// сопровождается записью в журнале в той же транзакции хранилища.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/validation"
)

type CreditInput struct {
	Email        string
	UserType     string
	Type         string
	Amount       decimal.Decimal
	SeminarID    *uuid.UUID
	EnrollmentID *uuid.UUID
	Description  string
}

// Ledger работает внутри транзакции вызывающего.
type Ledger struct {
	now func() time.Time
}

func New() *Ledger {
	return &Ledger{now: func() time.Time { return time.Now().UTC() }}
}

// Credit зачисляет сумму на кошелёк (email, user_type), создавая его при необходимости.
func (l *Ledger) Credit(ctx context.Context, repos repository.Repositories, in CreditInput) (*models.Transaction, error) {
	amount, err := valueobject.NewPositiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	in.Email = validation.NormalizeEmail(in.Email)
	if in.Email == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "email получателя обязателен")
	}
	if !models.ValidUserType(in.UserType) {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип кошелька")
	}
	if !models.ValidCreditType(in.Type) {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип начисления")
	}

	wallet, err := GetOrCreateWallet(ctx, repos, in.Email, in.UserType)
	if err != nil {
		return nil, err
	}

	now := l.now()
	wallet.Balance = wallet.Balance.Add(amount)
	wallet.TotalEarned = wallet.TotalEarned.Add(amount)
	wallet.UpdatedAt = now
	if err := repos.Wallets().Update(ctx, wallet); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:           uuid.New(),
		WalletID:     &wallet.ID,
		UserEmail:    in.Email,
		Type:         in.Type,
		Amount:       amount,
		SeminarID:    in.SeminarID,
		EnrollmentID: in.EnrollmentID,
		Description:  optional(in.Description),
		Status:       models.TransactionStatusCompleted,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	if err := repos.Transactions().Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordPlatformFee пишет комиссию платформы в журнал. Кошелька у платформы нет.
func (l *Ledger) RecordPlatformFee(ctx context.Context, repos repository.Repositories, email string, amount decimal.Decimal, seminarID, enrollmentID *uuid.UUID) (*models.Transaction, error) {
	amount, err := valueobject.NewPositiveAmount(amount)
	if err != nil {
		return nil, err
	}

	now := l.now()
	tx := &models.Transaction{
		ID:           uuid.New(),
		UserEmail:    email,
		Type:         models.TransactionTypePlatformFee,
		Amount:       amount,
		SeminarID:    seminarID,
		EnrollmentID: enrollmentID,
		Description:  optional("Platform fee"),
		Status:       models.TransactionStatusCompleted,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	if err := repos.Transactions().Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Post проводит одну проводку из плана расчётов.
func (l *Ledger) Post(ctx context.Context, repos repository.Repositories, p pricing.Posting, seminarID, enrollmentID *uuid.UUID) (*models.Transaction, error) {
	if !p.ToWallet {
		return l.RecordPlatformFee(ctx, repos, p.Email, p.Amount, seminarID, enrollmentID)
	}
	return l.Credit(ctx, repos, CreditInput{
		Email:        p.Email,
		UserType:     p.UserType,
		Type:         p.Type,
		Amount:       p.Amount,
		SeminarID:    seminarID,
		EnrollmentID: enrollmentID,
		Description:  p.Description,
	})
}

// GetOrCreateWallet возвращает заблокированный кошелёк владельца.
func GetOrCreateWallet(ctx context.Context, repos repository.Repositories, email, userType string) (*models.Wallet, error) {
	wallet, err := repos.Wallets().FindByOwnerForUpdate(ctx, email, userType)
	if err == nil {
		return wallet, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := repos.Wallets().Create(ctx, models.NewWallet(email, userType)); err != nil {
		return nil, err
	}
	return repos.Wallets().FindByOwnerForUpdate(ctx, email, userType)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
