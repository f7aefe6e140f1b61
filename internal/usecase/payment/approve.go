package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/pricing"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/ledger"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
)

// ApprovalResult подтверждённая запись и всё, что было проведено в журнал.
type ApprovalResult struct {
	Enrollment   *entity.Enrollment   `json:"enrollment"`
	Economics    pricing.Economics    `json:"economics"`
	Transactions []models.Transaction `json:"transactions"`
}

type ApprovePaymentUseCase struct {
	store         repository.Store
	ledger        *ledger.Ledger
	counts        cache.CountCache
	notifier      notify.Notifier
	platformEmail string
	now           func() time.Time
}

func NewApprovePaymentUseCase(store repository.Store, l *ledger.Ledger, counts cache.CountCache, notifier notify.Notifier, platformEmail string) *ApprovePaymentUseCase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ApprovePaymentUseCase{
		store:         store,
		ledger:        l,
		counts:        counts,
		notifier:      notifier,
		platformEmail: platformEmail,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Execute подтверждает оплату и проводит расчёты по семинару в одной транзакции.
// Любая ошибка после смены статуса откатывает всё и возвращается как CONSISTENCY_ERROR.
func (uc *ApprovePaymentUseCase) Execute(ctx context.Context, actor authz.Actor, enrollmentID uuid.UUID) (*ApprovalResult, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}

	result := &ApprovalResult{}
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		seminar, e, err := repository.LockEnrollment(ctx, repos, enrollmentID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := e.Approve(now); err != nil {
			return err
		}
		if err := repos.Enrollments().Update(ctx, e); err != nil {
			return apperror.Consistency(err, "не удалось отметить оплату")
		}
		result.Enrollment = e

		txs, econ, err := uc.settle(ctx, repos, seminar, e, now)
		if err != nil {
			return apperror.Consistency(err, "не удалось провести расчёты по семинару")
		}
		result.Economics = econ
		result.Transactions = txs
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.counts.Invalidate(ctx, result.Enrollment.SeminarID)
	logger.Log.WithFields(map[string]interface{}{
		"enrollment_id":   result.Enrollment.ID,
		"seminar_id":      result.Enrollment.SeminarID,
		"amount_paid":     result.Enrollment.AmountPaid.Decimal.StringFixed(2),
		"total_collected": result.Economics.TotalCollected.StringFixed(2),
		"postings":        len(result.Transactions),
		"admin":           actor.Email,
	}).Info("payment approved")

	uc.notifier.Notify(result.Enrollment.StudentEmail, notify.EventPaymentApproved, result.Enrollment)
	for _, tx := range result.Transactions {
		if tx.WalletID != nil {
			uc.notifier.Notify(tx.UserEmail, notify.EventWalletCredited, tx)
		}
	}
	return result, nil
}

// settle пересчитывает экономику по сумме оплаченных записей и проводит
// то, что ещё не было проведено по семинару.
func (uc *ApprovePaymentUseCase) settle(ctx context.Context, repos repository.Repositories, seminar *entity.Seminar, e *entity.Enrollment, now time.Time) ([]models.Transaction, pricing.Economics, error) {
	collected, err := repos.Enrollments().SumPaid(ctx, seminar.ID)
	if err != nil {
		return nil, pricing.Economics{}, err
	}
	econ := pricing.ComputeEconomics(seminar.TargetIncome, seminar.PlatformFeePercent, seminar.ProfessorBonusPercent, collected)

	settlement, err := repos.Settlements().GetForUpdate(ctx, seminar.ID)
	if err != nil {
		return nil, econ, err
	}
	referrers, err := repos.Enrollments().ListPaidReferrers(ctx, seminar.ID)
	if err != nil {
		return nil, econ, err
	}

	plan := pricing.PlanSettlement(econ, seminar.ProfessorBonusPercent,
		pricing.SettlementState{
			BaseIncomePosted:   settlement.BaseIncomePosted,
			SurplusDistributed: settlement.SurplusDistributed,
		},
		pricing.Parties{
			ProfessorEmail: seminar.ProfessorEmail,
			PlatformEmail:  uc.platformEmail,
			Referrers:      referrers,
		},
	)

	txs := make([]models.Transaction, 0, len(plan.Postings))
	for _, posting := range plan.Postings {
		tx, err := uc.ledger.Post(ctx, repos, posting, &seminar.ID, &e.ID)
		if err != nil {
			return nil, econ, err
		}
		txs = append(txs, *tx)
	}

	settlement.BaseIncomePosted = plan.State.BaseIncomePosted
	settlement.SurplusDistributed = plan.State.SurplusDistributed
	settlement.TotalCollected = collected
	settlement.UpdatedAt = now
	if err := repos.Settlements().Save(ctx, settlement); err != nil {
		return nil, econ, err
	}
	return txs, econ, nil
}
