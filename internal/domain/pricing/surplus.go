package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/valueobject"
	"github.com/okalab/okalab-backend/internal/models"
)

// Economics экономика семинара на момент подтверждения оплаты.
type Economics struct {
	TargetIncome   decimal.Decimal `json:"target_income"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	TotalRequired  decimal.Decimal `json:"total_required"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	Surplus        decimal.Decimal `json:"surplus"`
	ProfessorBonus decimal.Decimal `json:"professor_bonus"`
	ReferralPool   decimal.Decimal `json:"referral_pool"`
	ProfessorNet   decimal.Decimal `json:"professor_net"`
}

// ComputeEconomics считает комиссию, излишек и его деление.
// professor_bonus + referral_pool == surplus и professor_net + platform_fee == target_income
// выполняются точно: вторая часть каждой пары получается вычитанием.
func ComputeEconomics(targetIncome, feePercent, bonusPercent, totalCollected decimal.Decimal) Economics {
	fee := valueobject.RoundMoney(valueobject.PercentOf(targetIncome, feePercent))
	required := targetIncome.Add(fee)

	surplus := totalCollected.Sub(required)
	if surplus.IsNegative() {
		surplus = decimal.Zero
	}
	bonus := professorShare(surplus, bonusPercent)

	return Economics{
		TargetIncome:   targetIncome,
		PlatformFee:    fee,
		TotalRequired:  required,
		TotalCollected: totalCollected,
		Surplus:        surplus,
		ProfessorBonus: bonus,
		ReferralPool:   surplus.Sub(bonus),
		ProfessorNet:   targetIncome.Sub(fee),
	}
}

func professorShare(surplus, bonusPercent decimal.Decimal) decimal.Decimal {
	return valueobject.RoundMoney(valueobject.PercentOf(surplus, bonusPercent))
}

// SettlementState что уже проведено по семинару.
type SettlementState struct {
	BaseIncomePosted   bool
	SurplusDistributed decimal.Decimal
}

// Posting одна проводка в журнал. ToWallet=false только для комиссии платформы.
type Posting struct {
	Email       string
	UserType    string
	Type        string
	Amount      decimal.Decimal
	ToWallet    bool
	Description string
}

// SettlementPlan проводки и новое состояние расчётов.
type SettlementPlan struct {
	Postings []Posting
	State    SettlementState
}

// Parties участники распределения.
type Parties struct {
	ProfessorEmail string
	PlatformEmail  string
	// Referrers email пригласивших по оплаченным записям, дубли допустимы.
	Referrers []string
}

// PlanSettlement строит проводки для очередного подтверждения оплаты.
// Базовый доход профессора проводится один раз, когда собранное достигло target_income.
// Излишек проводится дельтой относительно уже распределённого.
func PlanSettlement(econ Economics, bonusPercent decimal.Decimal, state SettlementState, parties Parties) SettlementPlan {
	plan := SettlementPlan{State: state}

	if !state.BaseIncomePosted && econ.TargetIncome.IsPositive() && econ.TotalCollected.GreaterThanOrEqual(econ.TargetIncome) {
		if econ.ProfessorNet.IsPositive() {
			plan.Postings = append(plan.Postings, Posting{
				Email:       parties.ProfessorEmail,
				UserType:    models.UserTypeProfessor,
				Type:        models.TransactionTypeSeminarIncome,
				Amount:      econ.ProfessorNet,
				ToWallet:    true,
				Description: "Seminar income",
			})
		}
		if econ.PlatformFee.IsPositive() {
			plan.Postings = append(plan.Postings, Posting{
				Email:       parties.PlatformEmail,
				Type:        models.TransactionTypePlatformFee,
				Amount:      econ.PlatformFee,
				Description: "Platform fee",
			})
		}
		plan.State.BaseIncomePosted = true
	}

	delta := econ.Surplus.Sub(state.SurplusDistributed)
	if !delta.IsPositive() {
		return plan
	}

	// Доля профессора считается по накопленному итогу, чтобы сумма дельт
	// совпадала с professor_bonus без накопления ошибок округления.
	bonusDelta := professorShare(econ.Surplus, bonusPercent).Sub(professorShare(state.SurplusDistributed, bonusPercent))
	poolDelta := delta.Sub(bonusDelta)

	if bonusDelta.IsPositive() {
		plan.Postings = append(plan.Postings, Posting{
			Email:       parties.ProfessorEmail,
			UserType:    models.UserTypeProfessor,
			Type:        models.TransactionTypeSurplusDistribution,
			Amount:      bonusDelta,
			ToWallet:    true,
			Description: "Surplus bonus",
		})
	}

	if poolDelta.IsPositive() {
		plan.Postings = append(plan.Postings, referralPostings(poolDelta, parties)...)
	}

	plan.State.SurplusDistributed = econ.Surplus
	return plan
}

// referralPostings делит пул поровну между уникальными пригласившими.
// Доли обрезаются до копеек, остаток получает первый по алфавиту.
// Без пригласивших пул уходит профессору.
func referralPostings(pool decimal.Decimal, parties Parties) []Posting {
	referrers := DistinctReferrers(parties.Referrers, parties.ProfessorEmail)
	if len(referrers) == 0 {
		return []Posting{{
			Email:       parties.ProfessorEmail,
			UserType:    models.UserTypeProfessor,
			Type:        models.TransactionTypeSurplusDistribution,
			Amount:      pool,
			ToWallet:    true,
			Description: "Unclaimed referral pool",
		}}
	}

	shares := SplitEqually(pool, len(referrers))
	postings := make([]Posting, 0, len(referrers))
	for i, email := range referrers {
		if !shares[i].IsPositive() {
			continue
		}
		postings = append(postings, Posting{
			Email:       email,
			UserType:    models.UserTypeStudent,
			Type:        models.TransactionTypeReferralBonus,
			Amount:      shares[i],
			ToWallet:    true,
			Description: "Referral bonus",
		})
	}
	return postings
}

// DistinctReferrers убирает пустые значения, дубли и email профессора, сортирует.
func DistinctReferrers(emails []string, professorEmail string) []string {
	seen := make(map[string]struct{}, len(emails))
	result := make([]string, 0, len(emails))
	for _, email := range emails {
		if email == "" || email == professorEmail {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		result = append(result, email)
	}
	sort.Strings(result)
	return result
}

// SplitEqually делит сумму на n частей так, что их сумма равна исходной.
func SplitEqually(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	share := valueobject.TruncateMoney(amount.Div(decimal.NewFromInt(int64(n))))
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = share
	}
	shares[0] = amount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return shares
}
