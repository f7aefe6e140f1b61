package seminar

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/validation"
)

type UpdateSettingsInput struct {
	PlatformFeePercent      decimal.Decimal `validate:"percent"`
	SurplusProfessorPercent decimal.Decimal `validate:"percent"`
}

// SettingsUseCase глобальные проценты, подставляемые в новые семинары.
type SettingsUseCase struct {
	store    repository.Store
	defaults Defaults
}

func NewSettingsUseCase(store repository.Store, defaults Defaults) *SettingsUseCase {
	return &SettingsUseCase{store: store, defaults: defaults}
}

func (uc *SettingsUseCase) Get(ctx context.Context, actor authz.Actor) (*models.PlatformSettings, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	settings, err := uc.store.Settings().Get(ctx)
	if apperror.IsNotFound(err) {
		return &models.PlatformSettings{
			ID:                      1,
			PlatformFeePercent:      uc.defaults.PlatformFeePercent,
			SurplusProfessorPercent: uc.defaults.ProfessorBonusPercent,
		}, nil
	}
	return settings, err
}

func (uc *SettingsUseCase) Update(ctx context.Context, actor authz.Actor, input UpdateSettingsInput) (*models.PlatformSettings, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	settings := &models.PlatformSettings{
		ID:                      1,
		PlatformFeePercent:      input.PlatformFeePercent,
		SurplusProfessorPercent: input.SurplusProfessorPercent,
		UpdatedAt:               time.Now().UTC(),
	}
	if err := uc.store.Settings().Save(ctx, settings); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"admin":                     actor.Email,
		"platform_fee_percent":      settings.PlatformFeePercent.String(),
		"surplus_professor_percent": settings.SurplusProfessorPercent.String(),
	}).Info("platform settings updated")
	return settings, nil
}
