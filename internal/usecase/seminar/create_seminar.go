package seminar

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/validation"
)

type CreateSeminarInput struct {
	Actor                 authz.Actor      `validate:"-"`
	Title                 string           `validate:"required"`
	TargetIncome          decimal.Decimal  `validate:"money"`
	TargetStudents        *int             `validate:"omitempty,min=1"`
	MaxStudents           *int             `validate:"omitempty,min=1"`
	Price                 *decimal.Decimal `validate:"omitempty,money"`
	PlatformFeePercent    *decimal.Decimal `validate:"omitempty,percent"`
	ProfessorBonusPercent *decimal.Decimal `validate:"omitempty,percent"`
	PaymentDueDays        *int             `validate:"omitempty,min=0"`
	StartDate             time.Time        `validate:"required"`
}

// Defaults проценты на случай, если настройки платформы ещё не сохранены.
type Defaults struct {
	PlatformFeePercent    decimal.Decimal
	ProfessorBonusPercent decimal.Decimal
}

type CreateSeminarUseCase struct {
	store    repository.Store
	defaults Defaults
}

func NewCreateSeminarUseCase(store repository.Store, defaults Defaults) *CreateSeminarUseCase {
	return &CreateSeminarUseCase{store: store, defaults: defaults}
}

func (uc *CreateSeminarUseCase) Execute(ctx context.Context, input CreateSeminarInput) (*entity.Seminar, error) {
	if err := authz.RequireRole(input.Actor, authz.RoleProfessor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := validation.ValidateSeminarTitle(input.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	fee, bonus, err := uc.percentDefaults(ctx)
	if err != nil {
		return nil, err
	}
	if input.PlatformFeePercent != nil {
		fee = *input.PlatformFeePercent
	}
	if input.ProfessorBonusPercent != nil {
		bonus = *input.ProfessorBonusPercent
	}

	params := entity.NewSeminarParams{
		ProfessorID:           input.Actor.UserID,
		ProfessorEmail:        validation.NormalizeEmail(input.Actor.Email),
		Title:                 input.Title,
		TargetIncome:          input.TargetIncome,
		TargetStudents:        entity.DefaultTargetStudents,
		MaxStudents:           input.MaxStudents,
		PlatformFeePercent:    fee,
		ProfessorBonusPercent: bonus,
		PaymentDueDays:        entity.DefaultPaymentDueDays,
		StartDate:             input.StartDate.UTC(),
	}
	if input.TargetStudents != nil {
		params.TargetStudents = *input.TargetStudents
	}
	if input.PaymentDueDays != nil {
		params.PaymentDueDays = *input.PaymentDueDays
	}
	if input.Price != nil {
		params.Price = decimal.NewNullDecimal(*input.Price)
	}

	seminar, err := entity.NewSeminar(params)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Seminars().Create(ctx, seminar); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"seminar_id":    seminar.ID,
		"professor":     seminar.ProfessorEmail,
		"target_income": seminar.TargetIncome.StringFixed(2),
	}).Info("seminar created")
	return seminar, nil
}

func (uc *CreateSeminarUseCase) percentDefaults(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	settings, err := uc.store.Settings().Get(ctx)
	if apperror.IsNotFound(err) {
		return uc.defaults.PlatformFeePercent, uc.defaults.ProfessorBonusPercent, nil
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return settings.PlatformFeePercent, settings.SurplusProfessorPercent, nil
}
