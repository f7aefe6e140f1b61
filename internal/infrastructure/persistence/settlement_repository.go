package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

type SettlementRepository struct {
	q sqlx.ExtContext
}

// GetForUpdate вызывается под блокировкой строки семинара, поэтому первая
// вставка для семинара не гоняется с параллельной.
func (r *SettlementRepository) GetForUpdate(ctx context.Context, seminarID uuid.UUID) (*models.SeminarSettlement, error) {
	var s models.SeminarSettlement
	err := sqlx.GetContext(ctx, r.q, &s,
		`SELECT * FROM seminar_settlements WHERE seminar_id = $1 FOR UPDATE`, seminarID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.SeminarSettlement{SeminarID: seminarID}, nil
	}
	if err != nil {
		return nil, common.DBError(err, "не удалось прочитать расчёты по семинару")
	}
	return &s, nil
}

func (r *SettlementRepository) Save(ctx context.Context, s *models.SeminarSettlement) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO seminar_settlements (seminar_id, base_income_posted, surplus_distributed, total_collected, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (seminar_id) DO UPDATE
		SET base_income_posted = EXCLUDED.base_income_posted,
		    surplus_distributed = EXCLUDED.surplus_distributed,
		    total_collected = EXCLUDED.total_collected,
		    updated_at = EXCLUDED.updated_at
	`, s.SeminarID, s.BaseIncomePosted, s.SurplusDistributed, s.TotalCollected, s.UpdatedAt)
	return common.DBError(err, "не удалось сохранить расчёты по семинару")
}

type SettingsRepository struct {
	q sqlx.ExtContext
}

var errSettingsNotFound = apperror.New(apperror.ErrCodeNotFound, "настройки платформы не заданы")

func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	return common.GetByID[models.PlatformSettings](ctx, r.q, "platform_settings", 1, errSettingsNotFound)
}

func (r *SettingsRepository) Save(ctx context.Context, s *models.PlatformSettings) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO platform_settings (id, platform_fee_percent, surplus_professor_percent, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET platform_fee_percent = EXCLUDED.platform_fee_percent,
		    surplus_professor_percent = EXCLUDED.surplus_professor_percent,
		    updated_at = EXCLUDED.updated_at
	`, s.PlatformFeePercent, s.SurplusProfessorPercent, s.UpdatedAt)
	return common.DBError(err, "не удалось сохранить настройки платформы")
}
