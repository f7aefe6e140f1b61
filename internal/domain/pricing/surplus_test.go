package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/models"
)

func TestComputeEconomics_SurplusSplit(t *testing.T) {
	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("700"))

	assert.Equal(t, "75.00", econ.PlatformFee.StringFixed(2))
	assert.Equal(t, "575.00", econ.TotalRequired.StringFixed(2))
	assert.Equal(t, "125.00", econ.Surplus.StringFixed(2))
	assert.Equal(t, "37.50", econ.ProfessorBonus.StringFixed(2))
	assert.Equal(t, "87.50", econ.ReferralPool.StringFixed(2))
	assert.Equal(t, "425.00", econ.ProfessorNet.StringFixed(2))
}

func TestComputeEconomics_Conservation(t *testing.T) {
	targets := []string{"0", "1", "333.33", "500", "999.99"}
	fees := []string{"0", "7.5", "15", "33.33"}
	bonuses := []string{"0", "30", "33.33", "100"}
	collected := []string{"0", "100", "577.77", "1000.01", "12345.67"}

	for _, target := range targets {
		for _, fee := range fees {
			for _, bonus := range bonuses {
				for _, total := range collected {
					econ := ComputeEconomics(dec(target), dec(fee), dec(bonus), dec(total))

					assert.True(t, econ.ProfessorBonus.Add(econ.ReferralPool).Equal(econ.Surplus))
					assert.True(t, econ.ProfessorNet.Add(econ.PlatformFee).Equal(econ.TargetIncome))
					assert.False(t, econ.Surplus.IsNegative())
				}
			}
		}
	}
}

func TestComputeEconomics_NoSurplusBelowRequired(t *testing.T) {
	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("560"))

	assert.True(t, econ.Surplus.IsZero())
	assert.True(t, econ.ReferralPool.IsZero())
}

func sumByType(postings []Posting) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, p := range postings {
		out[p.Type] = out[p.Type].Add(p.Amount)
	}
	return out
}

func TestPlanSettlement_BaseIncomeOnce(t *testing.T) {
	parties := Parties{ProfessorEmail: "prof@okalab.io", PlatformEmail: "platform@okalab.io"}

	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("400"))
	plan := PlanSettlement(econ, dec("30"), SettlementState{}, parties)
	assert.Empty(t, plan.Postings)
	assert.False(t, plan.State.BaseIncomePosted)

	econ = ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("500"))
	plan = PlanSettlement(econ, dec("30"), plan.State, parties)
	require.Len(t, plan.Postings, 2)
	assert.Equal(t, models.TransactionTypeSeminarIncome, plan.Postings[0].Type)
	assert.Equal(t, "425.00", plan.Postings[0].Amount.StringFixed(2))
	assert.True(t, plan.Postings[0].ToWallet)
	assert.Equal(t, models.TransactionTypePlatformFee, plan.Postings[1].Type)
	assert.False(t, plan.Postings[1].ToWallet)
	assert.True(t, plan.State.BaseIncomePosted)

	econ = ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("550"))
	plan = PlanSettlement(econ, dec("30"), plan.State, parties)
	assert.Empty(t, plan.Postings)
}

func TestPlanSettlement_IncrementalSurplus(t *testing.T) {
	parties := Parties{
		ProfessorEmail: "prof@okalab.io",
		PlatformEmail:  "platform@okalab.io",
		Referrers:      []string{"bob@okalab.io", "alice@okalab.io", "bob@okalab.io", "carol@okalab.io"},
	}
	state := SettlementState{BaseIncomePosted: true}

	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("625"))
	first := PlanSettlement(econ, dec("30"), state, parties)

	econ = ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("700"))
	second := PlanSettlement(econ, dec("30"), first.State, parties)

	totals := sumByType(append(first.Postings, second.Postings...))
	assert.Equal(t, "37.50", totals[models.TransactionTypeSurplusDistribution].StringFixed(2))
	assert.Equal(t, "87.50", totals[models.TransactionTypeReferralBonus].StringFixed(2))
	assert.True(t, second.State.SurplusDistributed.Equal(dec("125")))

	replay := PlanSettlement(econ, dec("30"), second.State, parties)
	assert.Empty(t, replay.Postings)
}

func TestPlanSettlement_ReferralSplitRemainder(t *testing.T) {
	parties := Parties{
		ProfessorEmail: "prof@okalab.io",
		Referrers:      []string{"carol@okalab.io", "alice@okalab.io", "bob@okalab.io"},
	}
	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("700"))
	plan := PlanSettlement(econ, dec("30"), SettlementState{BaseIncomePosted: true}, parties)

	var referral []Posting
	for _, p := range plan.Postings {
		if p.Type == models.TransactionTypeReferralBonus {
			referral = append(referral, p)
		}
	}
	require.Len(t, referral, 3)
	assert.Equal(t, "alice@okalab.io", referral[0].Email)
	assert.Equal(t, "29.18", referral[0].Amount.StringFixed(2))
	assert.Equal(t, "29.16", referral[1].Amount.StringFixed(2))
	assert.Equal(t, "29.16", referral[2].Amount.StringFixed(2))
	assert.Equal(t, models.UserTypeStudent, referral[0].UserType)
}

func TestPlanSettlement_NoReferrersPoolToProfessor(t *testing.T) {
	parties := Parties{ProfessorEmail: "prof@okalab.io"}
	econ := ComputeEconomics(dec("500"), dec("15"), dec("30"), dec("700"))
	plan := PlanSettlement(econ, dec("30"), SettlementState{BaseIncomePosted: true}, parties)

	totals := sumByType(plan.Postings)
	assert.Equal(t, "125.00", totals[models.TransactionTypeSurplusDistribution].StringFixed(2))
	assert.True(t, totals[models.TransactionTypeReferralBonus].IsZero())
	for _, p := range plan.Postings {
		assert.Equal(t, "prof@okalab.io", p.Email)
	}
}

func TestSplitEqually(t *testing.T) {
	shares := SplitEqually(dec("0.01"), 3)
	require.Len(t, shares, 3)
	assert.Equal(t, "0.01", shares[0].StringFixed(2))
	assert.True(t, shares[1].IsZero())

	total := decimal.Zero
	for _, s := range SplitEqually(dec("100"), 7) {
		total = total.Add(s)
	}
	assert.True(t, total.Equal(dec("100")))
	assert.Nil(t, SplitEqually(dec("1"), 0))
}

func TestDistinctReferrers_SkipsProfessorAndBlanks(t *testing.T) {
	got := DistinctReferrers([]string{"b@x.io", "", "prof@x.io", "a@x.io", "b@x.io"}, "prof@x.io")
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, got)
}
