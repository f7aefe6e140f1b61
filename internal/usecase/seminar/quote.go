package seminar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// Quote цена места для отображения. Оплата всегда пересчитывает цену в транзакции.
type Quote struct {
	SeminarID       uuid.UUID       `json:"seminar_id"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	NextPrice       decimal.Decimal `json:"next_price"`
	MinPrice        decimal.Decimal `json:"min_price"`
	EnrollmentCount int             `json:"enrollment_count"`
	TargetStudents  int             `json:"target_students"`
	TargetReached   bool            `json:"target_reached"`
	PaymentOpensAt  time.Time       `json:"payment_opens_at"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	ProfessorNet    decimal.Decimal `json:"professor_net"`
}

type QuoteUseCase struct {
	store  repository.Store
	counts cache.CountCache
}

func NewQuoteUseCase(store repository.Store, counts cache.CountCache) *QuoteUseCase {
	return &QuoteUseCase{store: store, counts: counts}
}

func (uc *QuoteUseCase) Execute(ctx context.Context, seminarID uuid.UUID) (*Quote, error) {
	seminar, err := uc.store.Seminars().FindByID(ctx, seminarID)
	if err != nil {
		return nil, err
	}

	count, err := activeCount(ctx, uc.store, uc.counts, seminarID)
	if err != nil {
		return nil, err
	}

	in := pricing.InputFor(seminar, count)
	econ := pricing.ComputeEconomics(seminar.TargetIncome, seminar.PlatformFeePercent, seminar.ProfessorBonusPercent, decimal.Zero)
	return &Quote{
		SeminarID:       seminar.ID,
		CurrentPrice:    pricing.QuoteCurrentPrice(in),
		NextPrice:       pricing.QuoteNextPrice(in),
		MinPrice:        pricing.MinPrice(in),
		EnrollmentCount: count,
		TargetStudents:  seminar.TargetStudents,
		TargetReached:   pricing.TargetReached(in),
		PaymentOpensAt:  seminar.PaymentOpensAt(),
		PlatformFee:     econ.PlatformFee,
		ProfessorNet:    econ.ProfessorNet,
	}, nil
}

// MaxCountsBatch ограничение на число семинаров в одном запросе счётчиков.
const MaxCountsBatch = 100

type CountsUseCase struct {
	store  repository.Store
	counts cache.CountCache
}

func NewCountsUseCase(store repository.Store, counts cache.CountCache) *CountsUseCase {
	return &CountsUseCase{store: store, counts: counts}
}

// Execute возвращает число активных записей по каждому семинару. Неизвестные id дают 0.
func (uc *CountsUseCase) Execute(ctx context.Context, seminarIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(seminarIDs) > MaxCountsBatch {
		return nil, apperror.New(apperror.ErrCodeValidation, "слишком много семинаров в запросе")
	}

	result := make(map[uuid.UUID]int, len(seminarIDs))
	missing := make([]uuid.UUID, 0, len(seminarIDs))
	for _, id := range seminarIDs {
		if count, ok := uc.counts.Get(ctx, id); ok {
			result[id] = count
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	fresh, err := uc.store.Enrollments().CountActiveBySeminars(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		result[id] = fresh[id]
		uc.counts.Set(ctx, id, fresh[id])
	}
	return result, nil
}

func activeCount(ctx context.Context, store repository.Store, counts cache.CountCache, seminarID uuid.UUID) (int, error) {
	if count, ok := counts.Get(ctx, seminarID); ok {
		return count, nil
	}
	count, err := store.Enrollments().CountActive(ctx, seminarID)
	if err != nil {
		return 0, err
	}
	counts.Set(ctx, seminarID, count)
	return count, nil
}
